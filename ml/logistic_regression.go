package ml

import (
	"fmt"
	"math"

	"heartpredict/record"
)

// LogisticRegression labels a row positive when the sigmoid of the linear
// score reaches Threshold (0.5 when unset).
type LogisticRegression struct {
	Encoder      *Encoder  `json:"-"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Threshold    float64   `json:"threshold,omitempty"`
}

func (lr *LogisticRegression) Predict(batch record.Batch) ([]int, error) {
	return predictRows(lr.Encoder, lr, batch)
}

// Probability returns P(disease) for one encoded row.
func (lr *LogisticRegression) Probability(x []float64) float64 {
	return sigmoid(dot(lr.Coefficients, x) + lr.Intercept)
}

func (lr *LogisticRegression) predictVector(x []float64) (int, error) {
	if len(x) != len(lr.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(lr.Coefficients), len(x))
	}
	threshold := lr.Threshold
	if threshold == 0 {
		threshold = 0.5
	}
	if lr.Probability(x) >= threshold {
		return LabelDisease, nil
	}
	return LabelNoDisease, nil
}

func (lr *LogisticRegression) validate(width int) error {
	if len(lr.Coefficients) != width {
		return fmt.Errorf("%w: %d coefficients for %d encoded features", ErrInvalidModel, len(lr.Coefficients), width)
	}
	if lr.Threshold < 0 || lr.Threshold >= 1 {
		return fmt.Errorf("%w: threshold %g outside [0, 1)", ErrInvalidModel, lr.Threshold)
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
