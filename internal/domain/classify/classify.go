// Package classify maps summary metrics to qualitative bands using fixed
// thresholds.
package classify

import "github.com/okian/retention/internal/domain/model"

// Default thresholds, in percentage points.
const (
	defaultEarlySevere   = 40.0
	defaultEarlyModerate = 20.0
	defaultFinalSevere   = 10.0
	defaultFinalModerate = 30.0
)

// Thresholds are the band boundaries.
//
//	early_dropoff:   > EarlySevere -> Severe, > EarlyModerate -> Moderate, else Healthy
//	final_retention: < FinalSevere -> Severe, < FinalModerate -> Moderate, else Healthy
type Thresholds struct {
	EarlySevere   float64
	EarlyModerate float64
	FinalSevere   float64
	FinalModerate float64
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EarlySevere:   defaultEarlySevere,
		EarlyModerate: defaultEarlyModerate,
		FinalSevere:   defaultFinalSevere,
		FinalModerate: defaultFinalModerate,
	}
}

// Normalized restores a metric's default pair when its bounds are inverted.
func (t Thresholds) Normalized() Thresholds {
	d := DefaultThresholds()
	if t.EarlyModerate > t.EarlySevere {
		t.EarlySevere, t.EarlyModerate = d.EarlySevere, d.EarlyModerate
	}
	if t.FinalSevere > t.FinalModerate {
		t.FinalSevere, t.FinalModerate = d.FinalSevere, d.FinalModerate
	}
	return t
}

// Classifier is stateless apart from its thresholds.
type Classifier struct {
	thresholds Thresholds
}

// New creates a classifier with default thresholds.
func New(opts ...Option) *Classifier {
	c := &Classifier{thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Thresholds returns the active thresholds.
func (c *Classifier) Thresholds() Thresholds { return c.thresholds }

// Classify bands every classified metric of s. It fails on the first
// undefined one rather than guessing.
func (c *Classifier) Classify(s model.MetricsSummary) (model.Bands, error) {
	early, err := c.EarlyDropoff(s.EarlyDropoff)
	if err != nil {
		return model.Bands{}, err
	}
	final, err := c.FinalRetention(s.FinalRetention)
	if err != nil {
		return model.Bands{}, err
	}
	return model.Bands{EarlyDropoff: early, FinalRetention: final}, nil
}

// EarlyDropoff bands the early drop-off metric.
func (c *Classifier) EarlyDropoff(m model.Metric) (model.Band, error) {
	v, ok := m.Float()
	if !ok {
		return "", &UndefinedMetricError{Metric: model.MetricEarlyDropoff}
	}
	switch {
	case v > c.thresholds.EarlySevere:
		return model.BandSevere, nil
	case v > c.thresholds.EarlyModerate:
		return model.BandModerate, nil
	default:
		return model.BandHealthy, nil
	}
}

// FinalRetention bands the final retention metric.
func (c *Classifier) FinalRetention(m model.Metric) (model.Band, error) {
	v, ok := m.Float()
	if !ok {
		return "", &UndefinedMetricError{Metric: model.MetricFinalRetention}
	}
	switch {
	case v < c.thresholds.FinalSevere:
		return model.BandSevere, nil
	case v < c.thresholds.FinalModerate:
		return model.BandModerate, nil
	default:
		return model.BandHealthy, nil
	}
}
