package service

import (
	"errors"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("job queue full")
	ErrUnknownChart = errors.New("unknown chart kind")
)

// kindError gives a sentinel the kind the HTTP layer maps to a status.
type kindError struct {
	err  error
	kind string
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }
func (e *kindError) Kind() string  { return e.kind }
