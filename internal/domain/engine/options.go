package engine

import (
	"github.com/okian/retention/internal/domain/analysis"
	"github.com/okian/retention/internal/domain/classify"
	"github.com/okian/retention/internal/domain/validate"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithValidator sets the series validator.
func WithValidator(v *validate.Validator) Option {
	return func(e *Engine) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithPolicy sets the analysis policy. Unusable values fall back to defaults.
func WithPolicy(p analysis.Policy) Option {
	return func(e *Engine) {
		e.policy = p.Normalized()
	}
}

// WithClassifier sets the band classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}
