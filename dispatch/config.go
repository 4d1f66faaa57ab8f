package dispatch

import (
	"errors"
	"fmt"
	"path/filepath"

	"heartpredict/ml"
)

// ModelSpec locates one artifact. ID is the stable identifier, Name the
// label shown to users and used for output columns.
type ModelSpec struct {
	ID   string  `json:"id" yaml:"id"`
	Name string  `json:"name" yaml:"name"`
	Kind ml.Kind `json:"kind" yaml:"kind"`
	Path string  `json:"path" yaml:"path"`
}

// Config is fixed for the lifetime of a Dispatcher. Models are run and
// reported in the listed order.
type Config struct {
	Models []ModelSpec
	// CacheSize > 0 keeps up to that many loaded artifacts between
	// dispatches. Zero reloads every artifact on every dispatch.
	CacheSize int
	// Watch evicts cached artifacts when their file changes.
	Watch bool
}

// DefaultModels returns the four fixed models with their conventional file
// names under dir.
func DefaultModels(dir string) []ModelSpec {
	return []ModelSpec{
		{ID: "DecisionTree", Name: "Decision Tree", Kind: ml.KindDecisionTree, Path: filepath.Join(dir, "DecisionTree.json")},
		{ID: "LogisticRegression", Name: "Logistic Regression", Kind: ml.KindLogisticRegression, Path: filepath.Join(dir, "LogisticRegression.json")},
		{ID: "RandomForest", Name: "Random Forest", Kind: ml.KindRandomForest, Path: filepath.Join(dir, "RandomForest.json")},
		{ID: "SVM", Name: "Support Vector Machine", Kind: ml.KindSVM, Path: filepath.Join(dir, "SVM.json")},
	}
}

func (c Config) validate() error {
	if len(c.Models) == 0 {
		return ErrNoModels
	}
	ids := make(map[string]bool, len(c.Models))
	names := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.ID == "" || m.Name == "" {
			return fmt.Errorf("model %d: id and name are required", i)
		}
		if m.Path == "" {
			return fmt.Errorf("model %s: path is required", m.ID)
		}
		if ids[m.ID] || names[m.Name] {
			return fmt.Errorf("model %s: duplicate id or name", m.ID)
		}
		ids[m.ID] = true
		names[m.Name] = true
	}
	if c.CacheSize < 0 {
		return errors.New("cache size must not be negative")
	}
	return nil
}
