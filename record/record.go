// Package record defines the clinical observation schema shared by the input
// adapters and the classifiers.
package record

import (
	"fmt"
	"math"
	"strconv"
)

// Column names, exactly as they appear in uploaded tables and artifact encoders.
const (
	FieldAge            = "Age"
	FieldSex            = "Sex"
	FieldChestPainType  = "ChestPainType"
	FieldRestingBP      = "RestingBP"
	FieldCholesterol    = "Cholesterol"
	FieldFastingBS      = "FastingBS"
	FieldRestingECG     = "RestingECG"
	FieldMaxHR          = "MaxHR"
	FieldExerciseAngina = "ExerciseAngina"
	FieldOldpeak        = "Oldpeak"
	FieldSTSlope        = "ST_Slope"
)

// Fields is the fixed column order of a Record.
var Fields = []string{
	FieldAge,
	FieldSex,
	FieldChestPainType,
	FieldRestingBP,
	FieldCholesterol,
	FieldFastingBS,
	FieldRestingECG,
	FieldMaxHR,
	FieldExerciseAngina,
	FieldOldpeak,
	FieldSTSlope,
}

// Categories lists the closed domain of every categorical field.
var Categories = map[string][]string{
	FieldSex:            {"Male", "Female"},
	FieldChestPainType:  {"ATA", "NAP", "TA", "ASY"},
	FieldRestingECG:     {"Normal", "ST", "LVH"},
	FieldExerciseAngina: {"Y", "N"},
	FieldSTSlope:        {"Up", "Flat", "Down"},
}

// Record is one subject's clinical observation.
type Record struct {
	Age            int     `json:"Age"`
	Sex            string  `json:"Sex"`
	ChestPainType  string  `json:"ChestPainType"`
	RestingBP      int     `json:"RestingBP"`
	Cholesterol    int     `json:"Cholesterol"`
	FastingBS      int     `json:"FastingBS"`
	RestingECG     string  `json:"RestingECG"`
	MaxHR          int     `json:"MaxHR"`
	ExerciseAngina string  `json:"ExerciseAngina"`
	Oldpeak        float64 `json:"Oldpeak"`
	STSlope        string  `json:"ST_Slope"`
}

// Batch is an ordered sequence of records; index is row order.
type Batch []Record

// Value is a single feature value. Categorical fields set Text, numeric
// fields set Num.
type Value struct {
	Num         float64
	Text        string
	Categorical bool
}

func (v Value) String() string {
	if v.Categorical {
		return v.Text
	}
	return strconv.FormatFloat(v.Num, 'f', -1, 64)
}

// IsCategorical reports whether field holds an enum value.
func IsCategorical(field string) bool {
	_, ok := Categories[field]
	return ok
}

// Value returns the named field. It fails only for names outside Fields.
func (r Record) Value(field string) (Value, error) {
	switch field {
	case FieldAge:
		return num(float64(r.Age)), nil
	case FieldSex:
		return text(r.Sex), nil
	case FieldChestPainType:
		return text(r.ChestPainType), nil
	case FieldRestingBP:
		return num(float64(r.RestingBP)), nil
	case FieldCholesterol:
		return num(float64(r.Cholesterol)), nil
	case FieldFastingBS:
		return num(float64(r.FastingBS)), nil
	case FieldRestingECG:
		return text(r.RestingECG), nil
	case FieldMaxHR:
		return num(float64(r.MaxHR)), nil
	case FieldExerciseAngina:
		return text(r.ExerciseAngina), nil
	case FieldOldpeak:
		return num(r.Oldpeak), nil
	case FieldSTSlope:
		return text(r.STSlope), nil
	default:
		return Value{}, fmt.Errorf("unknown field %q", field)
	}
}

// Set parses raw into the named field. Categorical values are stored as
// given; membership is left to the classifiers' encoders.
func (r *Record) Set(field, raw string) error {
	switch field {
	case FieldSex:
		r.Sex = raw
		return nil
	case FieldChestPainType:
		r.ChestPainType = raw
		return nil
	case FieldRestingECG:
		r.RestingECG = raw
		return nil
	case FieldExerciseAngina:
		r.ExerciseAngina = raw
		return nil
	case FieldSTSlope:
		r.STSlope = raw
		return nil
	case FieldOldpeak:
		v, err := parseFloat(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		r.Oldpeak = v
		return nil
	}

	target, ok := r.intField(field)
	if !ok {
		return fmt.Errorf("unknown field %q", field)
	}
	v, err := parseInt(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*target = v
	return nil
}

func (r *Record) intField(field string) (*int, bool) {
	switch field {
	case FieldAge:
		return &r.Age, true
	case FieldRestingBP:
		return &r.RestingBP, true
	case FieldCholesterol:
		return &r.Cholesterol, true
	case FieldFastingBS:
		return &r.FastingBS, true
	case FieldMaxHR:
		return &r.MaxHR, true
	}
	return nil, false
}

// parseInt accepts "52" as well as "52.0", which spreadsheet exports produce.
func parseInt(raw string) (int, error) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	return int(f), nil
}

// parseFloat rejects NaN and infinities, which strconv accepts.
func parseFloat(raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return f, nil
}

func num(v float64) Value { return Value{Num: v} }
func text(v string) Value { return Value{Text: v, Categorical: true} }
