package ui

import (
	"context"

	"github.com/example/drtempus/pkg/models"
)

// State is the screen currently on display
type State int

const (
	// StateStart shows the welcome screen with the start button
	StateStart State = iota
	// StateQuiz shows the current question, the answer box and the score
	StateQuiz
	// StateFinished shows the final score with restart and quit buttons
	StateFinished
	// StateClosed means the window is gone
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateQuiz:
		return "quiz"
	case StateFinished:
		return "finished"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// View renders the quiz screens. Calls are never concurrent for a single controller.
type View interface {
	ShowStart() error
	ShowQuestion(number int, text string) error
	ShowScore(total int) error
	ShowFinished(score, total int) error
	ShowWarning(title, message string) error
	ShowError(message string) error
	Close() error
}

// ResultRecorder stores finished quiz runs
type ResultRecorder interface {
	Record(ctx context.Context, result *models.QuizResult) error
}
