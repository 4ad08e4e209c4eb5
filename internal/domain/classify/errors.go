package classify

import (
	"errors"
	"fmt"
)

// ErrUndefinedMetric is matched by every UndefinedMetricError.
var ErrUndefinedMetric = errors.New("metric has no data")

// UndefinedMetricError names the metric that could not be classified.
type UndefinedMetricError struct {
	Metric string
}

func (e *UndefinedMetricError) Error() string {
	return fmt.Sprintf("%s: %s", e.Metric, ErrUndefinedMetric.Error())
}

// Is matches ErrUndefinedMetric.
func (e *UndefinedMetricError) Is(target error) bool { return target == ErrUndefinedMetric }

// Kind reports "undefined_metric".
func (e *UndefinedMetricError) Kind() string { return "undefined_metric" }
