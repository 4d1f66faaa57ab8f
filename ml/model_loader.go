package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the on-disk envelope written by the training pipeline.
type Artifact struct {
	Kind    Kind            `json:"kind"`
	Encoder *Encoder        `json:"encoder"`
	Model   json.RawMessage `json:"model"`
}

type validatingClassifier interface {
	Classifier
	validate(width int) error
}

// LoadModel reads the artifact at path. When modelType is set the artifact
// must declare the same kind.
func LoadModel(modelType Kind, path string) (Classifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeModel(modelType, payload)
}

// DecodeModel parses and structurally validates an artifact.
func DecodeModel(modelType Kind, payload []byte) (Classifier, error) {
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if modelType != "" && artifact.Kind != modelType {
		return nil, fmt.Errorf("%w: artifact kind %q, expected %q", ErrInvalidModel, artifact.Kind, modelType)
	}
	if err := artifact.Encoder.validate(); err != nil {
		return nil, err
	}
	if len(artifact.Model) == 0 {
		return nil, fmt.Errorf("%w: artifact has no model", ErrInvalidModel)
	}

	var model validatingClassifier
	switch artifact.Kind {
	case KindDecisionTree:
		model = &DecisionTree{Encoder: artifact.Encoder}
	case KindLogisticRegression:
		model = &LogisticRegression{Encoder: artifact.Encoder}
	case KindRandomForest:
		model = &RandomForest{Encoder: artifact.Encoder}
	case KindSVM:
		model = &SVM{Encoder: artifact.Encoder}
	default:
		return nil, fmt.Errorf("%w: unsupported model type %q", ErrInvalidModel, artifact.Kind)
	}

	if err := json.Unmarshal(artifact.Model, model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := model.validate(artifact.Encoder.Width()); err != nil {
		return nil, err
	}
	return model, nil
}
