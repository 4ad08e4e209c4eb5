// Package ingest turns external inputs (delimited files, scraped pages) into
// raw records for the analysis engine. Records are never range-checked here.
package ingest

import (
	"context"

	"github.com/okian/retention/internal/domain/model"
)

// Source produces the raw rows of one video's retention series.
type Source interface {
	Records(ctx context.Context) ([]model.RawRecord, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]model.RawRecord, error)

// Records calls f.
func (f SourceFunc) Records(ctx context.Context) ([]model.RawRecord, error) { return f(ctx) }

// Static returns a Source that always yields the given records.
func Static(records []model.RawRecord) Source {
	return SourceFunc(func(context.Context) ([]model.RawRecord, error) {
		return records, nil
	})
}

// FromSamples converts samples back into raw records.
func FromSamples(samples []model.Sample) []model.RawRecord {
	out := make([]model.RawRecord, len(samples))
	for i, s := range samples {
		out[i] = model.RawRecord{
			model.FieldTimestamp: s.Timestamp,
			model.FieldRetention: s.Retention,
		}
	}
	return out
}
