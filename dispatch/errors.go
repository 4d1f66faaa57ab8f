package dispatch

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBatch = errors.New("batch has no rows")
	ErrNoModels   = errors.New("no models configured")
)

// ArtifactLoadError means a model file was missing or unusable. No
// predictions are returned for any model.
type ArtifactLoadError struct {
	Model string
	Path  string
	Err   error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load %s artifact %s: %v", e.Model, e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

// InferenceError means a loaded model rejected the batch.
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s inference: %v", e.Model, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
