package ml

import (
	"fmt"
	"slices"

	"heartpredict/record"
)

// FeatureSpec describes how one record column becomes model input. Numeric
// columns are standardised with Mean/Scale; categorical columns are one-hot
// encoded over Categories in the listed order.
type FeatureSpec struct {
	Name       string   `json:"name"`
	Mean       float64  `json:"mean,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Encoder turns records into the dense vectors a model was trained on.
type Encoder struct {
	Features []FeatureSpec `json:"features"`
}

func (e *Encoder) validate() error {
	if e == nil || len(e.Features) == 0 {
		return fmt.Errorf("%w: encoder has no features", ErrInvalidModel)
	}
	seen := make(map[string]bool, len(e.Features))
	for _, f := range e.Features {
		if !slices.Contains(record.Fields, f.Name) {
			return fmt.Errorf("%w: encoder references unknown column %q", ErrInvalidModel, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: column %q encoded twice", ErrInvalidModel, f.Name)
		}
		seen[f.Name] = true

		categorical := record.IsCategorical(f.Name)
		if categorical && len(f.Categories) == 0 {
			return fmt.Errorf("%w: categorical column %q has no categories", ErrInvalidModel, f.Name)
		}
		if !categorical && len(f.Categories) > 0 {
			return fmt.Errorf("%w: numeric column %q has categories", ErrInvalidModel, f.Name)
		}
		if f.Scale < 0 {
			return fmt.Errorf("%w: column %q has negative scale", ErrInvalidModel, f.Name)
		}
	}
	return nil
}

// Width is the length of an encoded vector.
func (e *Encoder) Width() int {
	width := 0
	for _, f := range e.Features {
		if len(f.Categories) > 0 {
			width += len(f.Categories)
		} else {
			width++
		}
	}
	return width
}

// Encode converts every row. A categorical value outside the trained
// categories fails the whole batch.
func (e *Encoder) Encode(batch record.Batch) ([][]float64, error) {
	width := e.Width()
	vectors := make([][]float64, len(batch))
	for row, r := range batch {
		x := make([]float64, 0, width)
		for _, f := range e.Features {
			v, err := r.Value(f.Name)
			if err != nil {
				return nil, err
			}
			if len(f.Categories) == 0 {
				scale := f.Scale
				if scale == 0 {
					scale = 1
				}
				x = append(x, (v.Num-f.Mean)/scale)
				continue
			}
			idx := slices.Index(f.Categories, v.Text)
			if idx < 0 {
				return nil, fmt.Errorf("row %d: %s=%q: %w", row, f.Name, v.Text, ErrUnseenCategory)
			}
			for i := range f.Categories {
				if i == idx {
					x = append(x, 1)
				} else {
					x = append(x, 0)
				}
			}
		}
		vectors[row] = x
	}
	return vectors, nil
}
