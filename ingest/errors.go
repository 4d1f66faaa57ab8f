package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrInputParse     = errors.New("input parse error")
)

// SchemaError lists the required columns an uploaded table lacks.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing columns %s", ErrSchemaMismatch, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// ParseError carries the cause of a table that could not be read. Line is
// 1-based and counts the header; zero when unknown.
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInputParse.Error())
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %s", e.Column)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() []error { return []error{ErrInputParse, e.Err} }

func parseErrorf(line int, format string, args ...any) error {
	return &ParseError{Line: line, Err: fmt.Errorf(format, args...)}
}
