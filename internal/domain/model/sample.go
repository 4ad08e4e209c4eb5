// Package model contains domain models passed between layers.
package model

import "sort"

// Field names every raw record must expose.
const (
	FieldTimestamp = "timestamp"
	FieldRetention = "retention_percentage"
)

// RawRecord is one row of a RawSeriesInput: field name to value, as produced
// by an ingestion source (CSV rows carry strings, JSON bodies carry numbers).
type RawRecord map[string]any

// Sample is a single retention observation.
type Sample struct {
	Timestamp float64 `json:"timestamp" yaml:"timestamp"`
	Retention float64 `json:"retention_percentage" yaml:"retention_percentage"`
}

// Series is an immutable, timestamp-ordered sequence of samples.
// Build it with NewSeries; the zero value is an empty series.
type Series struct {
	samples []Sample
}

// NewSeries copies samples and stable-sorts them by timestamp, so ties keep
// their input order.
func NewSeries(samples []Sample) Series {
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Timestamp < cp[j].Timestamp })
	return Series{samples: cp}
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.samples) }

// At returns the i-th sample in timestamp order.
func (s Series) At(i int) Sample { return s.samples[i] }

// Samples returns a copy of the ordered samples.
func (s Series) Samples() []Sample {
	cp := make([]Sample, len(s.samples))
	copy(cp, s.samples)
	return cp
}

// Retentions returns the retention values in series order.
func (s Series) Retentions() []float64 {
	out := make([]float64, len(s.samples))
	for i, smp := range s.samples {
		out[i] = smp.Retention
	}
	return out
}

// Bounds returns the smallest and largest timestamp. ok is false for an
// empty series.
func (s Series) Bounds() (lo, hi float64, ok bool) {
	if len(s.samples) == 0 {
		return 0, 0, false
	}
	// sorted, so the ends are the bounds
	return s.samples[0].Timestamp, s.samples[len(s.samples)-1].Timestamp, true
}
