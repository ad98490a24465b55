package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Deferrer runs a function once after a delay
type Deferrer interface {
	After(delay time.Duration, fn func())
}

// Scheduler runs one-shot deferred actions, such as showing the next question after the
// score has been on screen for a moment
type Scheduler struct {
	scheduler *gocron.Scheduler
}

// New creates a new scheduler instance and starts it
func New() *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.StartAsync()
	return &Scheduler{scheduler: s}
}

// After runs fn once, delay from now. A non-positive delay runs fn right away on its own
// goroutine, so fn never runs inside the caller's callback.
func (s *Scheduler) After(delay time.Duration, fn func()) {
	if delay <= 0 {
		go fn()
		return
	}

	_, err := s.scheduler.Every(delay).WaitForSchedule().LimitRunsTo(1).Do(fn)
	if err != nil {
		log.Printf("Error scheduling deferred action, running it now: %v", err)
		go fn()
	}
}

// Stop terminates the scheduler; pending actions are dropped
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Immediate runs deferred actions synchronously, ignoring the delay
type Immediate struct{}

func (Immediate) After(_ time.Duration, fn func()) {
	fn()
}
