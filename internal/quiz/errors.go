package quiz

import "errors"

var (
	// ErrAnswerTooShort is returned when an answer is shorter than the minimum length
	ErrAnswerTooShort = errors.New("answer is too short")
	// ErrFinished is returned when acting on a session that has no questions left
	ErrFinished = errors.New("quiz already finished")
	// ErrUnknownLabel is returned when the classifier emits a label with no score
	ErrUnknownLabel = errors.New("unknown classifier label")
)
