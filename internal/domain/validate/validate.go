// Package validate turns raw tabular input into a RetentionSeries.
package validate

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/retention/internal/domain/model"
)

const (
	minRetention = 0
	maxRetention = 100
)

// Validator checks the schema of raw records and builds a sorted series.
type Validator struct {
	policy ValuePolicy
}

// New creates a validator. The default policy passes values through untouched.
func New(opts ...Option) *Validator {
	v := &Validator{policy: PassThrough}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Policy returns the configured value policy.
func (v *Validator) Policy() ValuePolicy { return v.policy }

// Validate confirms every record has a timestamp and a retention_percentage
// and returns the records as a series stable-sorted by timestamp.
// Schema is checked for every record before any value is parsed, so a
// SchemaError always wins over a ValueError.
func (v *Validator) Validate(records []model.RawRecord) (model.Series, error) {
	if len(records) == 0 {
		return model.Series{}, ErrEmptySeries
	}
	for i, rec := range records {
		var missing []string
		if _, ok := rec[model.FieldTimestamp]; !ok {
			missing = append(missing, model.FieldTimestamp)
		}
		if _, ok := rec[model.FieldRetention]; !ok {
			missing = append(missing, model.FieldRetention)
		}
		if len(missing) > 0 {
			return model.Series{}, &SchemaError{Index: i, Missing: missing}
		}
	}

	samples := make([]model.Sample, len(records))
	for i, rec := range records {
		ts, err := toFloat(rec[model.FieldTimestamp])
		if err != nil {
			return model.Series{}, &ValueError{Index: i, Field: model.FieldTimestamp, Value: rec[model.FieldTimestamp], Err: ErrInvalidValue}
		}
		ret, err := toFloat(rec[model.FieldRetention])
		if err != nil {
			return model.Series{}, &ValueError{Index: i, Field: model.FieldRetention, Value: rec[model.FieldRetention], Err: ErrInvalidValue}
		}
		ret, err = v.applyPolicy(ret)
		if err != nil {
			return model.Series{}, &ValueError{Index: i, Field: model.FieldRetention, Value: rec[model.FieldRetention], Err: err}
		}
		samples[i] = model.Sample{Timestamp: ts, Retention: ret}
	}
	return model.NewSeries(samples), nil
}

// Columns checks a header for the required field names, for inputs whose
// schema is known even when they carry no records.
func Columns(names []string) error {
	var missing []string
	for _, field := range []string{model.FieldTimestamp, model.FieldRetention} {
		if !slices.Contains(names, field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Index: -1, Missing: missing}
	}
	return nil
}

func (v *Validator) applyPolicy(ret float64) (float64, error) {
	if ret >= minRetention && ret <= maxRetention {
		return ret, nil
	}
	switch v.policy {
	case Clamp:
		return math.Max(minRetention, math.Min(maxRetention, ret)), nil
	case Reject:
		return 0, ErrOutOfRange
	default:
		return ret, nil
	}
}

// toFloat accepts the numeric shapes ingestion sources produce.
func toFloat(val any) (float64, error) {
	var f float64
	switch x := val.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, ErrInvalidValue
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, ErrInvalidValue
		}
		f = parsed
	default:
		return 0, ErrInvalidValue
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidValue
	}
	return f, nil
}
