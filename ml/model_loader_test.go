package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"heartpredict/record"
)

const modelDir = "../models"

func negativeRecord() record.Record {
	return record.Record{
		Age: 52, Sex: "Male", ChestPainType: "ASY", RestingBP: 125, Cholesterol: 212,
		FastingBS: 0, RestingECG: "Normal", MaxHR: 168, ExerciseAngina: "N", Oldpeak: 1.0, STSlope: "Up",
	}
}

func positiveRecord() record.Record {
	return record.Record{
		Age: 65, Sex: "Male", ChestPainType: "ASY", RestingBP: 150, Cholesterol: 280,
		FastingBS: 1, RestingECG: "ST", MaxHR: 110, ExerciseAngina: "Y", Oldpeak: 2.5, STSlope: "Flat",
	}
}

// splitRecord is flagged by the decision tree only.
func splitRecord() record.Record {
	return record.Record{
		Age: 35, Sex: "Female", ChestPainType: "ASY", RestingBP: 130, Cholesterol: 200,
		FastingBS: 0, RestingECG: "Normal", MaxHR: 180, ExerciseAngina: "N", Oldpeak: 3.0, STSlope: "Up",
	}
}

func TestLoadModelShippedArtifacts(t *testing.T) {
	batch := record.Batch{negativeRecord(), positiveRecord(), splitRecord()}

	tests := []struct {
		kind Kind
		file string
		want []int
	}{
		{kind: KindDecisionTree, file: "DecisionTree.json", want: []int{0, 1, 1}},
		{kind: KindLogisticRegression, file: "LogisticRegression.json", want: []int{0, 1, 0}},
		{kind: KindRandomForest, file: "RandomForest.json", want: []int{0, 1, 0}},
		{kind: KindSVM, file: "SVM.json", want: []int{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			model, err := LoadModel(tt.kind, filepath.Join(modelDir, tt.file))
			if err != nil {
				t.Fatalf("LoadModel: %v", err)
			}
			got, err := model.Predict(batch)
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("labels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := LoadModel(KindSVM, filepath.Join(t.TempDir(), "SVM.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestDecodeModelRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		payload string
	}{
		{name: "garbage", payload: "\x00\x01pickle"},
		{name: "kind mismatch", kind: KindSVM, payload: `{"kind":"decision_tree","encoder":{"features":[{"name":"Age"}]},"model":{"nodes":[{"is_leaf":true}]}}`},
		{name: "unknown kind", payload: `{"kind":"knn","encoder":{"features":[{"name":"Age"}]},"model":{}}`},
		{name: "no encoder", payload: `{"kind":"decision_tree","model":{"nodes":[{"is_leaf":true}]}}`},
		{name: "unknown column", payload: `{"kind":"decision_tree","encoder":{"features":[{"name":"Thal"}]},"model":{"nodes":[{"is_leaf":true}]}}`},
		{name: "categorical without categories", payload: `{"kind":"decision_tree","encoder":{"features":[{"name":"Sex"}]},"model":{"nodes":[{"is_leaf":true}]}}`},
		{name: "no model", payload: `{"kind":"decision_tree","encoder":{"features":[{"name":"Age"}]}}`},
		{name: "coefficient count", payload: `{"kind":"logistic_regression","encoder":{"features":[{"name":"Age"}]},"model":{"coefficients":[1,2]}}`},
		{name: "empty forest", payload: `{"kind":"random_forest","encoder":{"features":[{"name":"Age"}]},"model":{"trees":[]}}`},
		{name: "rbf without gamma", payload: `{"kind":"svm","encoder":{"features":[{"name":"Age"}]},"model":{"kernel":"rbf","support_vectors":[[1]],"dual_coef":[1]}}`},
		{name: "dual coef count", payload: `{"kind":"svm","encoder":{"features":[{"name":"Age"}]},"model":{"kernel":"linear","support_vectors":[[1]],"dual_coef":[1,2]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeModel(tt.kind, []byte(tt.payload)); !errors.Is(err, ErrInvalidModel) {
				t.Fatalf("expected ErrInvalidModel, got %v", err)
			}
		})
	}
}

func TestPredictUnseenCategory(t *testing.T) {
	model, err := LoadModel(KindLogisticRegression, filepath.Join(modelDir, "LogisticRegression.json"))
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	r := negativeRecord()
	r.ChestPainType = "XYZ"
	_, err = model.Predict(record.Batch{negativeRecord(), r})
	if !errors.Is(err, ErrUnseenCategory) {
		t.Fatalf("expected ErrUnseenCategory, got %v", err)
	}
}

func TestRBFSupportVectorMachine(t *testing.T) {
	payload := `{
		"kind": "svm",
		"encoder": {"features": [{"name": "Age", "mean": 50, "scale": 10}]},
		"model": {
			"kernel": "rbf",
			"gamma": 1,
			"support_vectors": [[-1], [1]],
			"dual_coef": [-1, 1],
			"intercept": 0
		}
	}`
	model, err := DecodeModel(KindSVM, []byte(payload))
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}
	got, err := model.Predict(record.Batch{{Age: 38}, {Age: 63}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1}, got); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestEncoderWidthAndOneHot(t *testing.T) {
	enc := &Encoder{Features: []FeatureSpec{
		{Name: record.FieldAge, Mean: 50, Scale: 10},
		{Name: record.FieldSTSlope, Categories: []string{"Down", "Flat", "Up"}},
		{Name: record.FieldFastingBS},
	}}
	if err := enc.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc.Width() != 5 {
		t.Fatalf("expected width 5, got %d", enc.Width())
	}
	vectors, err := enc.Encode(record.Batch{{Age: 60, STSlope: "Flat", FastingBS: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([][]float64{{1, 0, 1, 0, 1}}, vectors); diff != "" {
		t.Fatalf("vector mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribeCoversAllKinds(t *testing.T) {
	for _, kind := range []Kind{KindDecisionTree, KindLogisticRegression, KindRandomForest, KindSVM} {
		info, ok := Describe(kind)
		if !ok || info.Name == "" || info.Description == "" {
			t.Fatalf("missing info for %s", kind)
		}
	}
	if _, ok := Describe("knn"); ok {
		t.Fatal("expected no info for unknown kind")
	}
}
