package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/drtempus/internal/quiz"
	"github.com/example/drtempus/internal/scheduler"
	"github.com/example/drtempus/pkg/models"
)

// ErrInvalidTransition is returned for an action the current screen does not offer
var ErrInvalidTransition = errors.New("action not available on this screen")

// DefaultNextDelay is how long the score stays on screen before the next question
const DefaultNextDelay = time.Second

// Options configures a Controller
type Options struct {
	MinAnswerLength int                // Defaults to quiz.DefaultMinAnswerLength
	NextDelay       time.Duration      // Defaults to DefaultNextDelay, negative for none
	Deferrer        scheduler.Deferrer // Runs the delayed next-question display
	Recorder        ResultRecorder     // Optional store for finished runs
	Player          string
}

// Controller drives the screens of one quiz: start, questions, final score. Every action
// runs under one lock, so actions and delayed displays never interleave.
type Controller struct {
	session  *quiz.Session
	view     View
	deferrer scheduler.Deferrer
	recorder ResultRecorder

	minLen    int
	delay     time.Duration
	player    string
	state     State
	seq       int // Bumped on every advance, restart and quit; stale displays are dropped
	startedAt time.Time
	mu        sync.Mutex
}

// NewController creates a controller on the start screen
func NewController(session *quiz.Session, view View, opts Options) *Controller {
	if opts.MinAnswerLength <= 0 {
		opts.MinAnswerLength = quiz.DefaultMinAnswerLength
	}
	if opts.NextDelay == 0 {
		opts.NextDelay = DefaultNextDelay
	}
	if opts.Deferrer == nil {
		opts.Deferrer = scheduler.Immediate{}
	}
	return &Controller{
		session:  session,
		view:     view,
		deferrer: opts.Deferrer,
		recorder: opts.Recorder,
		minLen:   opts.MinAnswerLength,
		delay:    opts.NextDelay,
		player:   opts.Player,
		state:    StateStart,
	}
}

// State returns the screen on display
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open shows the start screen
func (c *Controller) Open() (err error) {
	defer c.recoverPanic(&err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateStart {
		return ErrInvalidTransition
	}
	if err := c.view.ShowStart(); err != nil {
		return c.fail(err)
	}
	return nil
}

// Begin leaves the start screen and shows the first question
func (c *Controller) Begin() (err error) {
	defer c.recoverPanic(&err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateStart {
		return ErrInvalidTransition
	}
	c.enterQuiz()
	return c.display()
}

// Submit scores an answer. A too-short answer only raises a warning. Otherwise the new
// score is shown and the next question follows after the configured delay.
func (c *Controller) Submit(ctx context.Context, answer string) (err error) {
	defer c.recoverPanic(&err)

	seq, err := c.submit(ctx, answer)
	if err != nil || seq == 0 {
		return err
	}
	c.deferrer.After(c.delay, func() { c.showNext(seq) })
	return nil
}

func (c *Controller) submit(ctx context.Context, answer string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateQuiz {
		return 0, ErrInvalidTransition
	}

	if err := quiz.ValidateAnswer(answer, c.minLen); err != nil {
		msg := fmt.Sprintf("Responda com pelo menos %d caracteres.", c.minLen)
		if err := c.view.ShowWarning("Resposta inválida", msg); err != nil {
			return 0, c.fail(err)
		}
		return 0, nil
	}

	delta, err := c.session.SubmitAnswer(ctx, answer)
	if errors.Is(err, quiz.ErrFinished) {
		return 0, ErrInvalidTransition
	}
	if err != nil {
		return 0, c.fail(err)
	}
	if delta.Nonsense {
		log.Printf("Answer to question %d dropped as nonsense", delta.Index)
	}

	if err := c.view.ShowScore(delta.Total); err != nil {
		return 0, c.fail(err)
	}
	c.seq++
	return c.seq, nil
}

// Skip moves on without scoring; the next question follows after the configured delay
func (c *Controller) Skip() (err error) {
	defer c.recoverPanic(&err)

	seq, err := c.skip()
	if err != nil {
		return err
	}
	c.deferrer.After(c.delay, func() { c.showNext(seq) })
	return nil
}

func (c *Controller) skip() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateQuiz || c.session.IsFinished() {
		return 0, ErrInvalidTransition
	}
	c.session.SkipQuestion()
	c.seq++
	return c.seq, nil
}

// Restart clears the score and shows the first question again
func (c *Controller) Restart() (err error) {
	defer c.recoverPanic(&err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateFinished {
		return ErrInvalidTransition
	}
	c.enterQuiz()
	return c.display()
}

// Quit closes the quiz from any screen
func (c *Controller) Quit() (err error) {
	defer c.recoverPanic(&err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrInvalidTransition
	}
	c.state = StateClosed
	c.seq++
	if err := c.view.Close(); err != nil {
		return fmt.Errorf("failed to close view: %w", err)
	}
	return nil
}

// showNext runs after the delay that follows an answer or a skip
func (c *Controller) showNext(seq int) {
	var err error
	defer c.recoverPanic(&err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateQuiz || seq != c.seq {
		return
	}
	c.display()
}

func (c *Controller) enterQuiz() {
	c.session.Reset()
	c.state = StateQuiz
	c.seq++
	c.startedAt = time.Now()
}

// display shows the current question, or the final score once none are left.
// Must be called with c.mu held.
func (c *Controller) display() error {
	idx, q, ok := c.session.Current()
	if ok {
		if err := c.view.ShowQuestion(idx+1, q.Text); err != nil {
			return c.fail(err)
		}
		return nil
	}

	c.state = StateFinished
	c.record()
	if err := c.view.ShowFinished(c.session.Score(), c.session.Total()); err != nil {
		return c.fail(err)
	}
	return nil
}

// record stores the finished run; failures are logged and do not reach the player
func (c *Controller) record() {
	if c.recorder == nil {
		return
	}

	stats := c.session.Stats()
	finishedAt := time.Now()
	result := &models.QuizResult{
		Player:     c.player,
		Score:      c.session.Score(),
		Total:      c.session.Total(),
		Answered:   stats.Answered,
		Skipped:    stats.Skipped,
		Nonsense:   stats.Nonsense,
		StartedAt:  c.startedAt,
		FinishedAt: finishedAt,
		Duration:   int(finishedAt.Sub(c.startedAt).Seconds()),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.recorder.Record(ctx, result); err != nil {
		log.Printf("Error recording quiz result for %s: %v", c.player, err)
	}
}

// fail reports an unexpected error through the generic error dialog.
// Must be called with c.mu held.
func (c *Controller) fail(err error) error {
	log.Printf("Quiz error on %s screen: %v", c.state, err)
	if viewErr := c.view.ShowError("Erro inesperado:\n" + err.Error()); viewErr != nil {
		log.Printf("Error showing error dialog: %v", viewErr)
	}
	return err
}

func (c *Controller) recoverPanic(err *error) {
	r := recover()
	if r == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	*err = c.fail(fmt.Errorf("panic: %v", r))
}
