package model

import (
	"encoding/json"
	"errors"
)

// DropoffEvent flags a sample whose retention fell sharply from the
// previous sample. Delta is negative.
type DropoffEvent struct {
	Sample Sample  `json:"sample" yaml:"sample"`
	Delta  float64 `json:"delta" yaml:"delta"`
}

// Report is the single-video analysis result.
type Report struct {
	// ID is derived from the analysed series, so identical input always
	// yields the same ID.
	ID               string          `json:"id" yaml:"id"`
	Label            string          `json:"label" yaml:"label"`
	SampleCount      int             `json:"sample_count" yaml:"sample_count"`
	Metrics          MetricsSummary  `json:"metrics" yaml:"metrics"`
	Dropoffs         []DropoffEvent  `json:"dropoffs" yaml:"dropoffs"`
	Highlights       []Sample        `json:"highlights" yaml:"highlights"`
	Chapters         ChapterAverages `json:"chapters" yaml:"chapters"`
	Bands            Bands           `json:"bands" yaml:"bands"`
	InsufficientData []string        `json:"insufficient_data,omitempty" yaml:"insufficient_data,omitempty"`
}

// Outcome is one side of a comparison: either a report or the error that
// stopped that side's pipeline.
type Outcome struct {
	Label  string
	Report *Report
	Err    error
}

// OK reports whether the side produced a report.
func (o Outcome) OK() bool { return o.Err == nil && o.Report != nil }

// Comparison pairs two independently produced outcomes. No winner is derived.
type Comparison struct {
	A Outcome `json:"a" yaml:"a"`
	B Outcome `json:"b" yaml:"b"`
}

// Partial reports whether exactly one side failed.
func (c Comparison) Partial() bool { return c.A.OK() != c.B.OK() }

// ErrorDetail is the serialisable form of a pipeline error.
type ErrorDetail struct {
	Kind    string   `json:"kind" yaml:"kind"`
	Message string   `json:"message" yaml:"message"`
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Errors that know their kind or the fields they lack expose it through
// these methods; the domain packages implement them.
type (
	kinded  interface{ Kind() string }
	missing interface{ MissingFields() []string }
)

// DescribeError converts err into an ErrorDetail. Kind falls back to "internal".
func DescribeError(err error) ErrorDetail {
	d := ErrorDetail{Kind: "internal", Message: err.Error()}
	var k kinded
	if errors.As(err, &k) {
		d.Kind = k.Kind()
	}
	var m missing
	if errors.As(err, &m) {
		d.Missing = m.MissingFields()
	}
	return d
}

type outcomeView struct {
	Label  string       `json:"label,omitempty" yaml:"label,omitempty"`
	Report *Report      `json:"report,omitempty" yaml:"report,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty" yaml:"error,omitempty"`
}

func (o Outcome) view() outcomeView {
	if o.Err != nil {
		d := DescribeError(o.Err)
		return outcomeView{Label: o.Label, Error: &d}
	}
	return outcomeView{Label: o.Label, Report: o.Report}
}

// MarshalJSON encodes the outcome as {"label", "report"} or {"label", "error"}.
func (o Outcome) MarshalJSON() ([]byte, error) { return json.Marshal(o.view()) }

// MarshalYAML mirrors MarshalJSON.
func (o Outcome) MarshalYAML() (any, error) { return o.view(), nil }
