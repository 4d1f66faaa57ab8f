package dispatch

import (
	"heartpredict/ml"
)

// Loader produces a ready classifier for a model spec.
type Loader interface {
	Load(spec ModelSpec) (ml.Classifier, error)
	Close() error
}

// fileLoader deserialises the artifact from disk on every call.
type fileLoader struct{}

func (fileLoader) Load(spec ModelSpec) (ml.Classifier, error) {
	return ml.LoadModel(spec.Kind, spec.Path)
}

func (fileLoader) Close() error { return nil }
