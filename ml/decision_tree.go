package ml

import (
	"errors"
	"fmt"

	"heartpredict/record"
)

type DecisionTree struct {
	Encoder *Encoder   `json:"-"`
	Nodes   []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

func (dt *DecisionTree) Predict(batch record.Batch) ([]int, error) {
	if len(dt.Nodes) == 0 {
		return nil, errors.New("model not trained")
	}
	return predictRows(dt.Encoder, dt, batch)
}

func (dt *DecisionTree) predictVector(features []float64) (int, error) {
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

// validate checks the node array against the encoded width. Children must
// come after their parent, which also rules out cycles.
func (dt *DecisionTree) validate(width int) error {
	if len(dt.Nodes) == 0 {
		return fmt.Errorf("%w: tree has no nodes", ErrInvalidModel)
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			if !validLabel(node.ClassLabel) {
				return fmt.Errorf("%w: node %d has label %d", ErrInvalidModel, i, node.ClassLabel)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= width {
			return fmt.Errorf("%w: node %d splits on feature %d of %d", ErrInvalidModel, i, node.FeatureIdx, width)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(dt.Nodes) {
				return fmt.Errorf("%w: node %d has child %d", ErrInvalidModel, i, child)
			}
		}
	}
	return nil
}
