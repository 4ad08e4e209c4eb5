package worker

import (
	"errors"
	"fmt"
)

// ErrJobPanic marks a job whose task panicked.
var ErrJobPanic = errors.New("job panicked")

type jobPanicError struct {
	kind  string
	value any
}

func (e *jobPanicError) Error() string {
	return fmt.Sprintf("%s job panicked: %v", e.kind, e.value)
}

func (e *jobPanicError) Unwrap() error { return ErrJobPanic }

// Kind reports the error class used by the HTTP layer.
func (e *jobPanicError) Kind() string { return "internal" }
