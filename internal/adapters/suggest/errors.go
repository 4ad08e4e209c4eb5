package suggest

import (
	"errors"
	"fmt"
)

// Sentinel kinds for suggestion errors.
var (
	ErrDisabled    = errors.New("suggestions disabled: no API key configured")
	ErrUpstream    = errors.New("suggestion service failed")
	ErrEmptyAnswer = errors.New("suggestion service returned no choices")
)

// UpstreamError carries the HTTP status of a failed completion call.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("suggestion service returned %d: %s", e.Status, e.Body)
}

// Is matches ErrUpstream.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Kind reports the error class used by the HTTP layer.
func (e *UpstreamError) Kind() string { return "upstream" }
