package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/example/drtempus/pkg/models"
)

// DefaultMinAnswerLength is the shortest answer accepted for scoring
const DefaultMinAnswerLength = 10

// Classifier predicts the quality label of a single text sample
type Classifier interface {
	Predict(ctx context.Context, text string) (int, error)
}

// Dependencies holds the read-only state a session is built from. It is loaded once at
// startup and may be shared by any number of sessions.
type Dependencies struct {
	Questions  []models.Question
	Classifier Classifier
	Scores     ScoreTable // DefaultScoreTable when nil
}

// ScoreDelta describes the outcome of one submitted answer
type ScoreDelta struct {
	Points   int  // Points earned by this answer
	Total    int  // Cumulative score after the answer
	Index    int  // Index of the next question
	Label    int  // Classifier label, -1 when the classifier was not called
	Nonsense bool // The answer was dropped by the nonsense filter
}

// Stats counts how the questions of a run were handled
type Stats struct {
	Answered int
	Skipped  int
	Nonsense int
}

// Session tracks progress through a fixed list of questions
type Session struct {
	questions  []models.Question
	classifier Classifier
	scores     ScoreTable

	current int
	total   int
	stats   Stats
	mu      sync.Mutex
}

// NewSession creates a session positioned on the first question
func NewSession(deps Dependencies) (*Session, error) {
	if len(deps.Questions) == 0 {
		return nil, errors.New("no questions to ask")
	}
	if deps.Classifier == nil {
		return nil, errors.New("classifier is not configured")
	}
	scores := deps.Scores
	if scores == nil {
		scores = DefaultScoreTable()
	}
	return &Session{
		questions:  deps.Questions,
		classifier: deps.Classifier,
		scores:     scores,
	}, nil
}

// ValidateAnswer checks the minimum answer length. It is meant to be called before
// SubmitAnswer, so a short answer never reaches the session.
func ValidateAnswer(answer string, minLen int) error {
	if utf8.RuneCountInString(strings.TrimSpace(answer)) < minLen {
		return fmt.Errorf("%w: at least %d characters required", ErrAnswerTooShort, minLen)
	}
	return nil
}

// ClassifierInput builds the text the classifier scores for an answer
func ClassifierInput(q models.Question, answer string) string {
	return fmt.Sprintf("%s %s %s", q.Text, q.ExpectedAnswer, answer)
}

// SubmitAnswer scores an answer to the current question and moves to the next one.
// Nonsense answers earn nothing and skip the classifier. On error the session is unchanged.
func (s *Session) SubmitAnswer(ctx context.Context, answer string) (ScoreDelta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current >= len(s.questions) {
		return ScoreDelta{}, ErrFinished
	}

	answer = strings.TrimSpace(answer)
	if IsNonsense(answer) {
		s.current++
		s.stats.Nonsense++
		return ScoreDelta{Total: s.total, Index: s.current, Label: -1, Nonsense: true}, nil
	}

	q := s.questions[s.current]
	label, err := s.classifier.Predict(ctx, ClassifierInput(q, answer))
	if err != nil {
		return ScoreDelta{}, fmt.Errorf("failed to classify answer: %w", err)
	}
	points, err := s.scores.Points(label)
	if err != nil {
		return ScoreDelta{}, err
	}

	s.total += points
	s.current++
	s.stats.Answered++

	return ScoreDelta{
		Points: points,
		Total:  s.total,
		Index:  s.current,
		Label:  label,
	}, nil
}

// SkipQuestion moves to the next question without scoring
func (s *Session) SkipQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.questions) {
		return
	}
	s.current++
	s.stats.Skipped++
}

// IsFinished reports whether every question has been answered or skipped
func (s *Session) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current >= len(s.questions)
}

// Reset moves back to the first question and clears the score
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = 0
	s.total = 0
	s.stats = Stats{}
}

// Current returns the index and question being asked, or false once finished
func (s *Session) Current() (int, models.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.questions) {
		return s.current, models.Question{}, false
	}
	return s.current, s.questions[s.current], true
}

// Index returns the position of the question being asked
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Score returns the points earned so far
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Total returns the number of questions in the session
func (s *Session) Total() int {
	return len(s.questions)
}

// Stats returns how the questions so far were handled
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
