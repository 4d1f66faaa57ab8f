package ml

import (
	"errors"

	"heartpredict/record"
)

// Labels produced by every classifier.
const (
	LabelNoDisease = 0
	LabelDisease   = 1
)

var (
	ErrUnseenCategory = errors.New("category not seen during training")
	ErrInvalidModel   = errors.New("invalid model")
)

// Classifier is a pre-trained binary classifier. Predict returns one label
// per row of batch, in row order.
type Classifier interface {
	Predict(batch record.Batch) ([]int, error)
}

// Kind identifies an algorithm family inside an artifact.
type Kind string

const (
	KindDecisionTree       Kind = "decision_tree"
	KindLogisticRegression Kind = "logistic_regression"
	KindRandomForest       Kind = "random_forest"
	KindSVM                Kind = "svm"
)

// vectorPredictor scores one encoded row.
type vectorPredictor interface {
	predictVector(x []float64) (int, error)
}

func predictRows(enc *Encoder, p vectorPredictor, batch record.Batch) ([]int, error) {
	vectors, err := enc.Encode(batch)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(vectors))
	for i, x := range vectors {
		label, err := p.predictVector(x)
		if err != nil {
			return nil, err
		}
		labels[i] = label
	}
	return labels, nil
}

func validLabel(label int) bool {
	return label == LabelNoDisease || label == LabelDisease
}
