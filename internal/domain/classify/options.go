package classify

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithThresholds replaces all thresholds. Incoherent values fall back to
// the defaults (see Thresholds.Normalized).
func WithThresholds(t Thresholds) Option {
	return func(c *Classifier) {
		c.thresholds = t.Normalized()
	}
}

// WithEarlyDropoff sets the early drop-off bounds: above severe is Severe,
// above moderate is Moderate.
func WithEarlyDropoff(severe, moderate float64) Option {
	return func(c *Classifier) {
		t := c.thresholds
		t.EarlySevere, t.EarlyModerate = severe, moderate
		c.thresholds = t.Normalized()
	}
}

// WithFinalRetention sets the final retention bounds: below severe is
// Severe, below moderate is Moderate.
func WithFinalRetention(severe, moderate float64) Option {
	return func(c *Classifier) {
		t := c.thresholds
		t.FinalSevere, t.FinalModerate = severe, moderate
		c.thresholds = t.Normalized()
	}
}
