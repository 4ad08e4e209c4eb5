package engine

import (
	"errors"
	"fmt"
)

// ErrPipelinePanic wraps a panic recovered from one side of a comparison.
var ErrPipelinePanic = errors.New("pipeline panicked")

type panicError struct {
	label string
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.label, ErrPipelinePanic.Error(), e.value)
}

func (e *panicError) Unwrap() error { return ErrPipelinePanic }
func (e *panicError) Kind() string  { return "internal" }
