package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"heartpredict/record"
)

const header = "Age,Sex,ChestPainType,RestingBP,Cholesterol,FastingBS,RestingECG,MaxHR,ExerciseAngina,Oldpeak,ST_Slope"

const twoRows = header + "\n" +
	"52,Male,ASY,125,212,0,Normal,168,N,1.0,Up\n" +
	"65,Male,ASY,150,280,1,ST,110,Y,2.5,Flat\n"

func TestReadTable(t *testing.T) {
	table, err := ReadTable(strings.NewReader(twoRows))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := record.Batch{
		{Age: 52, Sex: "Male", ChestPainType: "ASY", RestingBP: 125, Cholesterol: 212, FastingBS: 0, RestingECG: "Normal", MaxHR: 168, ExerciseAngina: "N", Oldpeak: 1.0, STSlope: "Up"},
		{Age: 65, Sex: "Male", ChestPainType: "ASY", RestingBP: 150, Cholesterol: 280, FastingBS: 1, RestingECG: "ST", MaxHR: 110, ExerciseAngina: "Y", Oldpeak: 2.5, STSlope: "Flat"},
	}
	if diff := cmp.Diff(want, table.Batch); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
	if len(table.Rows) != 2 || len(table.Header) != 11 {
		t.Fatalf("unexpected table shape: %d header, %d rows", len(table.Header), len(table.Rows))
	}
}

func TestReadTableColumnOrderAndExtras(t *testing.T) {
	input := "PatientID,ST_Slope,Oldpeak,ExerciseAngina,MaxHR,RestingECG,FastingBS,Cholesterol,RestingBP,ChestPainType,Sex,Age\n" +
		"p-1,Up,1.0,N,168,Normal,0,212,125,ASY,Male,52\n"
	table, err := ReadTable(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Batch[0].Age != 52 || table.Batch[0].STSlope != "Up" {
		t.Fatalf("unexpected record: %+v", table.Batch[0])
	}
	if table.Header[0] != "PatientID" || table.Rows[0][0] != "p-1" {
		t.Fatal("expected extra column to be kept")
	}
}

func TestReadTableSchemaMismatch(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		missing []string
	}{
		{
			name:    "dropped ST_Slope",
			input:   strings.TrimSuffix(header, ",ST_Slope") + "\n52,Male,ASY,125,212,0,Normal,168,N,1.0\n",
			missing: []string{"ST_Slope"},
		},
		{
			name:    "case sensitive",
			input:   strings.Replace(header, "Age", "age", 1) + "\n52,Male,ASY,125,212,0,Normal,168,N,1.0,Up\n",
			missing: []string{"Age"},
		},
		{
			name:    "unrelated table",
			input:   "a,b\n1,2\n",
			missing: record.Fields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.input))
			if !errors.Is(err, ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch, got %v", err)
			}
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *SchemaError, got %T", err)
			}
			if diff := cmp.Diff(tt.missing, schemaErr.Missing); diff != "" {
				t.Fatalf("missing mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadTableParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{name: "binary garbage", input: "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\xff\xfe"},
		{name: "empty", input: ""},
		{name: "header only", input: header + "\n", line: 1},
		{name: "ragged row", input: header + "\n52,Male,ASY\n", line: 2},
		{name: "non-numeric age", input: header + "\nfifty,Male,ASY,125,212,0,Normal,168,N,1.0,Up\n", line: 2},
		{name: "empty cell", input: header + "\n52,Male,ASY,125,,0,Normal,168,N,1.0,Up\n", line: 2},
		{name: "NaN oldpeak", input: header + "\n52,Male,ASY,125,212,0,Normal,168,N,NaN,Up\n", line: 2},
		{name: "infinite oldpeak", input: header + "\n52,Male,ASY,125,212,0,Normal,168,N,1.0,Up\n65,Male,ASY,150,280,1,ST,110,Y,Inf,Flat\n", line: 3},
		{name: "negative infinite oldpeak", input: header + "\n52,Male,ASY,125,212,0,Normal,168,N,-Inf,Up\n", line: 2},
		{name: "duplicate column", input: header + ",Age\n52,Male,ASY,125,212,0,Normal,168,N,1.0,Up,52\n", line: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadTable(strings.NewReader(tt.input))
			if table != nil {
				t.Fatal("expected no table")
			}
			if !errors.Is(err, ErrInputParse) {
				t.Fatalf("expected ErrInputParse, got %v", err)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if parseErr.Line != tt.line {
				t.Fatalf("expected line %d, got %d (%v)", tt.line, parseErr.Line, err)
			}
		})
	}
}

func TestReadTableByteOrderMarks(t *testing.T) {
	utf8BOM := append([]byte{0xEF, 0xBB, 0xBF}, twoRows...)
	table, err := ReadTable(bytes.NewReader(utf8BOM))
	if err != nil {
		t.Fatalf("utf-8 bom: %v", err)
	}
	if table.Header[0] != "Age" {
		t.Fatalf("expected BOM to be stripped, got %q", table.Header[0])
	}

	utf16 := []byte{0xFF, 0xFE}
	for _, r := range twoRows {
		utf16 = append(utf16, byte(r), 0)
	}
	table, err = ReadTable(bytes.NewReader(utf16))
	if err != nil {
		t.Fatalf("utf-16 bom: %v", err)
	}
	if len(table.Batch) != 2 || table.Batch[1].MaxHR != 110 {
		t.Fatalf("unexpected utf-16 batch: %+v", table.Batch)
	}
}

func TestAugmentAndWriteCSV(t *testing.T) {
	table, err := ReadTable(strings.NewReader(twoRows))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := table.Augment(PredictionColumn("Decision Tree"), []int{0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := table.Augment(PredictionColumn("SVM"), []int{1, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := table.Augment(PredictionColumn("SVM"), []int{0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := table.Augment("short", []int{1}); err == nil {
		t.Fatal("expected length mismatch error")
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := header + ",Prediction_Decision Tree,Prediction_SVM\n" +
		"52,Male,ASY,125,212,0,Normal,168,N,1.0,Up,0,0\n" +
		"65,Male,ASY,150,280,1,ST,110,Y,2.5,Flat,1,1\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}
