package quiz

import (
	"fmt"
	"sort"
)

// Class labels produced by the answer classifier
const (
	LabelLowQuality = 0
	LabelAcceptable = 1
)

// ScoreTable maps a classifier label to the points it is worth
type ScoreTable map[int]int

// DefaultScoreTable returns the scoring used by the quiz: a low-quality answer is worth
// nothing, an acceptable one is worth a point
func DefaultScoreTable() ScoreTable {
	return ScoreTable{
		LabelLowQuality: 0,
		LabelAcceptable: 1,
	}
}

// Points returns the score contribution of a label
func (t ScoreTable) Points(label int) (int, error) {
	points, ok := t[label]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownLabel, label)
	}
	return points, nil
}

// Validate checks that every label a classifier can emit has a score
func (t ScoreTable) Validate(classes []int) error {
	var missing []int
	for _, c := range classes {
		if _, ok := t[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return fmt.Errorf("%w: classifier can emit %v", ErrUnknownLabel, missing)
	}
	return nil
}
