package model

import (
	"encoding/json"
	"strconv"
)

// Metric is a derived percentage that may be undefined because no sample
// contributed to it. An undefined metric is never the same thing as zero.
type Metric struct {
	Value   float64
	Defined bool
}

// DefinedMetric returns a defined metric holding v.
func DefinedMetric(v float64) Metric { return Metric{Value: v, Defined: true} }

// Undefined returns the "no data" marker.
func Undefined() Metric { return Metric{} }

// Float returns the value and whether it is defined.
func (m Metric) Float() (float64, bool) { return m.Value, m.Defined }

// String formats the metric with two decimals, or "n/a".
func (m Metric) String() string {
	if !m.Defined {
		return "n/a"
	}
	return strconv.FormatFloat(m.Value, 'f', 2, 64)
}

// MarshalJSON encodes an undefined metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON decodes null into an undefined metric.
func (m *Metric) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Undefined()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = DefinedMetric(v)
	return nil
}

// MarshalYAML encodes an undefined metric as null.
func (m Metric) MarshalYAML() (any, error) {
	if !m.Defined {
		return nil, nil
	}
	return m.Value, nil
}

// Names used for metrics in reports and errors.
const (
	MetricAverageRetention = "average_retention"
	MetricEarlyDropoff     = "early_dropoff"
	MetricFinalRetention   = "final_retention"
)

// MetricsSummary holds the scalar summary of one series.
type MetricsSummary struct {
	AverageRetention Metric `json:"average_retention" yaml:"average_retention"`
	EarlyDropoff     Metric `json:"early_dropoff" yaml:"early_dropoff"`
	FinalRetention   Metric `json:"final_retention" yaml:"final_retention"`
}

// Undefined lists the names of the metrics that have no data, in a fixed order.
func (s MetricsSummary) Undefined() []string {
	var out []string
	if !s.AverageRetention.Defined {
		out = append(out, MetricAverageRetention)
	}
	if !s.EarlyDropoff.Defined {
		out = append(out, MetricEarlyDropoff)
	}
	if !s.FinalRetention.Defined {
		out = append(out, MetricFinalRetention)
	}
	return out
}
