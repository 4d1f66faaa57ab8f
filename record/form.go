package record

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Fasting blood sugar choices offered by the form.
const (
	FastingLow  = "<= 120 mg/dl"
	FastingHigh = "> 120 mg/dl"
)

var ErrOutOfDomain = errors.New("value out of domain")

// DomainError names the form field that fell outside its widget bounds.
type DomainError struct {
	Field  string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *DomainError) Unwrap() error { return ErrOutOfDomain }

// Form holds the values of the single-record input widgets.
type Form struct {
	Age            int     `json:"Age"`
	Sex            string  `json:"Sex"`
	ChestPainType  string  `json:"ChestPainType"`
	RestingBP      int     `json:"RestingBP"`
	Cholesterol    int     `json:"Cholesterol"`
	FastingBS      string  `json:"FastingBS"`
	RestingECG     string  `json:"RestingECG"`
	MaxHR          int     `json:"MaxHR"`
	ExerciseAngina string  `json:"ExerciseAngina"`
	Oldpeak        float64 `json:"Oldpeak"`
	STSlope        string  `json:"ST_Slope"`
}

type intRange struct {
	field    string
	value    int
	min, max int
	bounded  bool
}

// Record coerces the form into a Record, enforcing the same bounds the
// widgets do.
func (f Form) Record() (Record, error) {
	ranges := []intRange{
		{field: FieldAge, value: f.Age, min: 0, max: 150, bounded: true},
		{field: FieldRestingBP, value: f.RestingBP, min: 0, max: 300, bounded: true},
		{field: FieldCholesterol, value: f.Cholesterol, min: 0},
		{field: FieldMaxHR, value: f.MaxHR, min: 60, max: 202, bounded: true},
	}
	for _, r := range ranges {
		if r.value < r.min || (r.bounded && r.value > r.max) {
			if r.bounded {
				return Record{}, &DomainError{Field: r.field, Reason: fmt.Sprintf("%d not in [%d, %d]", r.value, r.min, r.max)}
			}
			return Record{}, &DomainError{Field: r.field, Reason: fmt.Sprintf("%d below %d", r.value, r.min)}
		}
	}
	if math.IsNaN(f.Oldpeak) || f.Oldpeak < 0 || f.Oldpeak > 10 {
		return Record{}, &DomainError{Field: FieldOldpeak, Reason: fmt.Sprintf("%g not in [0, 10]", f.Oldpeak)}
	}

	choices := map[string]string{
		FieldSex:            f.Sex,
		FieldChestPainType:  f.ChestPainType,
		FieldRestingECG:     f.RestingECG,
		FieldExerciseAngina: f.ExerciseAngina,
		FieldSTSlope:        f.STSlope,
	}
	for _, field := range Fields {
		value, ok := choices[field]
		if !ok {
			continue
		}
		if !slices.Contains(Categories[field], value) {
			return Record{}, &DomainError{Field: field, Reason: fmt.Sprintf("%q not one of %v", value, Categories[field])}
		}
	}

	fasting, err := FastingFlag(f.FastingBS)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Age:            f.Age,
		Sex:            f.Sex,
		ChestPainType:  f.ChestPainType,
		RestingBP:      f.RestingBP,
		Cholesterol:    f.Cholesterol,
		FastingBS:      fasting,
		RestingECG:     f.RestingECG,
		MaxHR:          f.MaxHR,
		ExerciseAngina: f.ExerciseAngina,
		Oldpeak:        f.Oldpeak,
		STSlope:        f.STSlope,
	}, nil
}

// FastingFlag maps the fasting blood sugar choice to 1 iff above 120 mg/dl.
func FastingFlag(choice string) (int, error) {
	switch choice {
	case FastingHigh:
		return 1, nil
	case FastingLow:
		return 0, nil
	default:
		return 0, &DomainError{Field: FieldFastingBS, Reason: fmt.Sprintf("%q not one of [%s %s]", choice, FastingLow, FastingHigh)}
	}
}
