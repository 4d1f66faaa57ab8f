// Package ingest reads uploaded tables into record batches and writes the
// prediction-augmented table back out.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"heartpredict/record"
)

// DownloadName is the file name offered for the augmented table.
const DownloadName = "heart_predictions.csv"

// Table is an uploaded table. Header and Rows keep every column, including
// ones the classifiers ignore, so they can be written back unchanged.
type Table struct {
	Header []string
	Rows   [][]string
	Batch  record.Batch
}

// ReadTable parses a delimited table with a header row. All 11 record
// columns must be present; extra columns are kept but not validated.
func ReadTable(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	rows, err := reader.ReadAll()
	if err != nil {
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
		}
		return nil, &ParseError{Err: err}
	}
	if len(rows) == 0 {
		return nil, parseErrorf(0, "empty input")
	}

	header := rows[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return nil, &ParseError{Line: 1, Column: name, Err: errors.New("duplicate column")}
		}
		index[name] = i
	}

	var missing []string
	for _, field := range record.Fields {
		if _, ok := index[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	data := rows[1:]
	if len(data) == 0 {
		return nil, parseErrorf(1, "no data rows")
	}

	batch := make(record.Batch, len(data))
	for i, row := range data {
		for _, field := range record.Fields {
			cell := row[index[field]]
			if cell == "" {
				return nil, &ParseError{Line: i + 2, Column: field, Err: errors.New("empty value")}
			}
			if err := batch[i].Set(field, cell); err != nil {
				return nil, &ParseError{Line: i + 2, Column: field, Err: err}
			}
		}
	}

	return &Table{Header: header, Rows: data, Batch: batch}, nil
}

// decodeText honours a UTF-8 or UTF-16 byte order mark and rejects input
// that is not text.
func decodeText(raw []byte) ([]byte, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	text, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if bytes.IndexByte(text, 0) >= 0 || bytes.ContainsRune(text, utf8.RuneError) {
		return nil, parseErrorf(0, "input is not a text table")
	}
	return text, nil
}

// PredictionColumn names the output column holding a model's labels.
func PredictionColumn(modelName string) string {
	return "Prediction_" + modelName
}

// Augment sets column name to labels, one per row. An existing column of
// the same name is overwritten.
func (t *Table) Augment(name string, labels []int) error {
	if len(labels) != len(t.Rows) {
		return fmt.Errorf("column %s: %d labels for %d rows", name, len(labels), len(t.Rows))
	}
	col := slices.Index(t.Header, name)
	if col < 0 {
		t.Header = append(t.Header, name)
	}
	for i, label := range labels {
		value := strconv.Itoa(label)
		if col < 0 {
			t.Rows[i] = append(t.Rows[i], value)
		} else {
			t.Rows[i][col] = value
		}
	}
	return nil
}

// WriteCSV writes the header and rows as comma-separated values.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}
