package validate

import (
	"fmt"
	"strings"
)

// kindError is a sentinel that also reports its kind.
type kindError struct {
	kind string
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Kind() string  { return e.kind }

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrSchema       error = &kindError{kind: "schema", msg: "missing required field"}
	ErrEmptySeries  error = &kindError{kind: "empty_series", msg: "series has no records"}
	ErrInvalidValue error = &kindError{kind: "invalid_value", msg: "value is not a finite number"}
	ErrOutOfRange   error = &kindError{kind: "out_of_range", msg: "retention outside [0,100]"}
)

// SchemaError names the required fields a record lacks. Index is -1 when
// the fields are missing from a header rather than a record.
type SchemaError struct {
	Index   int
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("header: missing field(s): %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("record %d: missing field(s): %s", e.Index, strings.Join(e.Missing, ", "))
}

// Is matches ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// Kind reports "schema".
func (e *SchemaError) Kind() string { return "schema" }

// MissingFields returns the absent field names.
func (e *SchemaError) MissingFields() []string { return e.Missing }

// ValueError reports a field whose value could not be used. Err is
// ErrInvalidValue or ErrOutOfRange.
type ValueError struct {
	Index int
	Field string
	Value any
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("record %d: field %s: %v: %s", e.Index, e.Field, e.Value, e.Err.Error())
}

func (e *ValueError) Unwrap() error { return e.Err }
