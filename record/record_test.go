package record

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func exampleForm() Form {
	return Form{
		Age:            52,
		Sex:            "Male",
		ChestPainType:  "ASY",
		RestingBP:      125,
		Cholesterol:    212,
		FastingBS:      FastingLow,
		RestingECG:     "Normal",
		MaxHR:          168,
		ExerciseAngina: "N",
		Oldpeak:        1.0,
		STSlope:        "Up",
	}
}

func TestFormRecord(t *testing.T) {
	got, err := exampleForm().Record()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Record{
		Age:            52,
		Sex:            "Male",
		ChestPainType:  "ASY",
		RestingBP:      125,
		Cholesterol:    212,
		FastingBS:      0,
		RestingECG:     "Normal",
		MaxHR:          168,
		ExerciseAngina: "N",
		Oldpeak:        1.0,
		STSlope:        "Up",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	form := exampleForm()
	form.FastingBS = FastingHigh
	got, err = form.Record()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FastingBS != 1 {
		t.Fatalf("expected FastingBS 1, got %d", got.FastingBS)
	}
}

func TestFormRecordOutOfDomain(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Form)
		field string
	}{
		{name: "age too high", edit: func(f *Form) { f.Age = 151 }, field: FieldAge},
		{name: "negative cholesterol", edit: func(f *Form) { f.Cholesterol = -1 }, field: FieldCholesterol},
		{name: "max hr below range", edit: func(f *Form) { f.MaxHR = 59 }, field: FieldMaxHR},
		{name: "resting bp above range", edit: func(f *Form) { f.RestingBP = 301 }, field: FieldRestingBP},
		{name: "oldpeak above range", edit: func(f *Form) { f.Oldpeak = 10.5 }, field: FieldOldpeak},
		{name: "oldpeak NaN", edit: func(f *Form) { f.Oldpeak = math.NaN() }, field: FieldOldpeak},
		{name: "oldpeak +Inf", edit: func(f *Form) { f.Oldpeak = math.Inf(1) }, field: FieldOldpeak},
		{name: "oldpeak -Inf", edit: func(f *Form) { f.Oldpeak = math.Inf(-1) }, field: FieldOldpeak},
		{name: "lowercase sex", edit: func(f *Form) { f.Sex = "male" }, field: FieldSex},
		{name: "unknown slope", edit: func(f *Form) { f.STSlope = "Sideways" }, field: FieldSTSlope},
		{name: "unknown fasting choice", edit: func(f *Form) { f.FastingBS = "1" }, field: FieldFastingBS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := exampleForm()
			tt.edit(&form)
			_, err := form.Record()
			if !errors.Is(err, ErrOutOfDomain) {
				t.Fatalf("expected ErrOutOfDomain, got %v", err)
			}
			var domainErr *DomainError
			if !errors.As(err, &domainErr) || domainErr.Field != tt.field {
				t.Fatalf("expected domain error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestFormRecordBoundsInclusive(t *testing.T) {
	form := exampleForm()
	form.Age = 150
	form.RestingBP = 0
	form.MaxHR = 202
	form.Oldpeak = 10
	if _, err := form.Record(); err != nil {
		t.Fatalf("expected boundary values to be accepted, got %v", err)
	}
}

func TestRecordSetAndValue(t *testing.T) {
	var r Record
	inputs := map[string]string{
		FieldAge:            "61",
		FieldSex:            "Female",
		FieldChestPainType:  "NAP",
		FieldRestingBP:      "140.0",
		FieldCholesterol:    "0",
		FieldFastingBS:      "1",
		FieldRestingECG:     "ST",
		FieldMaxHR:          "120",
		FieldExerciseAngina: "Y",
		FieldOldpeak:        "2.5",
		FieldSTSlope:        "Flat",
	}
	for _, field := range Fields {
		if err := r.Set(field, inputs[field]); err != nil {
			t.Fatalf("Set(%s): %v", field, err)
		}
	}

	if r.RestingBP != 140 {
		t.Fatalf("expected RestingBP 140, got %d", r.RestingBP)
	}
	v, err := r.Value(FieldOldpeak)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Categorical || v.Num != 2.5 {
		t.Fatalf("unexpected Oldpeak value: %+v", v)
	}
	v, err = r.Value(FieldSTSlope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Categorical || v.String() != "Flat" {
		t.Fatalf("unexpected ST_Slope value: %+v", v)
	}
}

func TestRecordSetRejectsBadNumbers(t *testing.T) {
	var r Record
	if err := r.Set(FieldAge, "52.5"); err == nil {
		t.Fatal("expected error for fractional age")
	}
	if err := r.Set(FieldOldpeak, "abc"); err == nil {
		t.Fatal("expected error for non-numeric oldpeak")
	}
	for _, raw := range []string{"NaN", "Inf", "-Inf", "+Inf", "infinity"} {
		if err := r.Set(FieldOldpeak, raw); err == nil {
			t.Fatalf("expected error for oldpeak %q", raw)
		}
		if err := r.Set(FieldAge, raw); err == nil {
			t.Fatalf("expected error for age %q", raw)
		}
	}
	if err := r.Set("Thalassemia", "1"); err == nil {
		t.Fatal("expected error for unknown field")
	}
	if _, err := r.Value("Thalassemia"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}
