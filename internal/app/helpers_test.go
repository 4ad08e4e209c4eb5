package service_test

import (
	"context"

	"github.com/okian/retention/internal/adapters/ingest"
	"github.com/okian/retention/internal/domain/model"
)

func sourceFunc(f func(context.Context) ([]model.RawRecord, error)) ingest.Source {
	return ingest.SourceFunc(f)
}
