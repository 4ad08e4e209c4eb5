package ingest

import (
	"errors"
)

// Sentinel kinds for ingestion errors.
var (
	ErrMalformed = errors.New("malformed input")
	ErrFetch     = errors.New("page fetch failed")
	ErrNoValues  = errors.New("no numeric values found")
)

type kinded struct {
	err  error
	kind string
}

func (k *kinded) Error() string { return k.err.Error() }
func (k *kinded) Unwrap() error { return k.err }
func (k *kinded) Kind() string  { return k.kind }

func withKind(kind string, err error) error {
	return &kinded{err: err, kind: kind}
}
