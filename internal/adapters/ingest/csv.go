package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/retention/internal/domain/model"
	"github.com/okian/retention/internal/domain/validate"
)

// CSVSource reads a delimited file with a header row. Every data row becomes
// a RawRecord keyed by the trimmed header names, with string values. A file
// with a header but no rows fails with a validate.SchemaError when the header
// lacks a required column.
type CSVSource struct {
	open  func() (io.ReadCloser, error)
	comma rune
}

// CSVOption configures a CSVSource.
type CSVOption func(*CSVSource)

// WithComma sets the field delimiter (default ',').
func WithComma(r rune) CSVOption {
	return func(s *CSVSource) {
		if r != 0 {
			s.comma = r
		}
	}
}

// NewCSVFile reads from path on every Records call.
func NewCSVFile(path string, opts ...CSVOption) *CSVSource {
	s := &CSVSource{
		open:  func() (io.ReadCloser, error) { return os.Open(path) },
		comma: ',',
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewCSVReader reads from r once.
func NewCSVReader(r io.Reader, opts ...CSVOption) *CSVSource {
	s := &CSVSource{
		open:  func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		comma: ',',
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Records parses the whole input.
func (s *CSVSource) Records(ctx context.Context) ([]model.RawRecord, error) {
	rc, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = rc.Close() }()

	r := csv.NewReader(rc)
	r.Comma = s.comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []model.RawRecord{}, nil
	}
	if err != nil {
		return nil, withKind("malformed", fmt.Errorf("%w: csv header: %w", ErrMalformed, err))
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []model.RawRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, withKind("malformed", fmt.Errorf("%w: csv line %d: %w", ErrMalformed, line, err))
		}
		if blank(row) {
			continue
		}
		rec := make(model.RawRecord, len(header))
		for i, name := range header {
			if name == "" || i >= len(row) {
				continue
			}
			rec[name] = row[i]
		}
		records = append(records, rec)
	}
	if records == nil {
		// no rows to carry the schema, so the header has to
		if err := validate.Columns(header); err != nil {
			return nil, err
		}
		records = []model.RawRecord{}
	}
	return records, nil
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
