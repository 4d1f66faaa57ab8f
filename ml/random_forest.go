package ml

import (
	"fmt"

	"heartpredict/record"
)

// RandomForest takes the majority vote of its trees. A tied vote is
// positive.
type RandomForest struct {
	Encoder *Encoder        `json:"-"`
	Trees   []*DecisionTree `json:"trees"`
}

func (rf *RandomForest) Predict(batch record.Batch) ([]int, error) {
	return predictRows(rf.Encoder, rf, batch)
}

func (rf *RandomForest) predictVector(x []float64) (int, error) {
	votes := 0
	for i, tree := range rf.Trees {
		label, err := tree.predictVector(x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		votes += label
	}
	if 2*votes >= len(rf.Trees) {
		return LabelDisease, nil
	}
	return LabelNoDisease, nil
}

func (rf *RandomForest) validate(width int) error {
	if len(rf.Trees) == 0 {
		return fmt.Errorf("%w: forest has no trees", ErrInvalidModel)
	}
	for i, tree := range rf.Trees {
		if tree == nil {
			return fmt.Errorf("%w: tree %d is empty", ErrInvalidModel, i)
		}
		if err := tree.validate(width); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
