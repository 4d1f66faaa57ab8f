package ml

import (
	"fmt"
	"math"

	"heartpredict/record"
)

// SVM kernels.
const (
	KernelLinear = "linear"
	KernelRBF    = "rbf"
)

// SVM is a binary support vector classifier in dual form. For the linear
// kernel the primal Weights may be stored instead of support vectors.
type SVM struct {
	Encoder        *Encoder    `json:"-"`
	Kernel         string      `json:"kernel"`
	Gamma          float64     `json:"gamma,omitempty"`
	SupportVectors [][]float64 `json:"support_vectors,omitempty"`
	DualCoef       []float64   `json:"dual_coef,omitempty"`
	Weights        []float64   `json:"weights,omitempty"`
	Intercept      float64     `json:"intercept"`
}

func (s *SVM) Predict(batch record.Batch) ([]int, error) {
	return predictRows(s.Encoder, s, batch)
}

// Decision returns the signed distance of x from the separating surface.
func (s *SVM) Decision(x []float64) float64 {
	if len(s.Weights) > 0 {
		return dot(s.Weights, x) + s.Intercept
	}
	sum := s.Intercept
	for i, sv := range s.SupportVectors {
		sum += s.DualCoef[i] * s.kernel(sv, x)
	}
	return sum
}

func (s *SVM) kernel(a, b []float64) float64 {
	if s.Kernel == KernelRBF {
		dist := 0.0
		for i := range a {
			d := a[i] - b[i]
			dist += d * d
		}
		return math.Exp(-s.Gamma * dist)
	}
	return dot(a, b)
}

func (s *SVM) predictVector(x []float64) (int, error) {
	if s.Decision(x) > 0 {
		return LabelDisease, nil
	}
	return LabelNoDisease, nil
}

func (s *SVM) validate(width int) error {
	switch s.Kernel {
	case KernelLinear:
		if len(s.Weights) > 0 {
			if len(s.Weights) != width {
				return fmt.Errorf("%w: %d weights for %d encoded features", ErrInvalidModel, len(s.Weights), width)
			}
			return nil
		}
	case KernelRBF:
		if s.Gamma <= 0 {
			return fmt.Errorf("%w: rbf kernel needs a positive gamma", ErrInvalidModel)
		}
	default:
		return fmt.Errorf("%w: unsupported kernel %q", ErrInvalidModel, s.Kernel)
	}

	if len(s.SupportVectors) == 0 {
		return fmt.Errorf("%w: no support vectors", ErrInvalidModel)
	}
	if len(s.DualCoef) != len(s.SupportVectors) {
		return fmt.Errorf("%w: %d dual coefficients for %d support vectors", ErrInvalidModel, len(s.DualCoef), len(s.SupportVectors))
	}
	for i, sv := range s.SupportVectors {
		if len(sv) != width {
			return fmt.Errorf("%w: support vector %d has %d features, want %d", ErrInvalidModel, i, len(sv), width)
		}
	}
	return nil
}
