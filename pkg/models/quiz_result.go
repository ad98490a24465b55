package models

import "time"

// QuizResult records one finished quiz run
type QuizResult struct {
	ID         int64     `json:"id" db:"id"`
	Player     string    `json:"player" db:"player"`
	Score      int       `json:"score" db:"score"`
	Total      int       `json:"total" db:"total"`       // Number of questions in the run
	Answered   int       `json:"answered" db:"answered"` // Answers sent to the classifier
	Skipped    int       `json:"skipped" db:"skipped"`
	Nonsense   int       `json:"nonsense" db:"nonsense"` // Answers dropped by the nonsense filter
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
	Duration   int       `json:"duration" db:"duration"` // Duration in seconds
}
