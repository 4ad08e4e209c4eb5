package validate

import (
	"fmt"
	"strings"
)

// ValuePolicy decides what happens to retention values outside [0,100].
type ValuePolicy int

// Supported policies. PassThrough is the default.
const (
	PassThrough ValuePolicy = iota
	Clamp
	Reject
)

func (p ValuePolicy) String() string {
	switch p {
	case Clamp:
		return "clamp"
	case Reject:
		return "reject"
	default:
		return "pass_through"
	}
}

// ParseValuePolicy accepts pass_through (or empty), clamp and reject.
func ParseValuePolicy(s string) (ValuePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pass_through", "passthrough":
		return PassThrough, nil
	case "clamp":
		return Clamp, nil
	case "reject":
		return Reject, nil
	default:
		return PassThrough, fmt.Errorf("unknown value policy: %s", s)
	}
}

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithValuePolicy sets how out-of-range retention values are handled.
func WithValuePolicy(p ValuePolicy) Option {
	return func(v *Validator) {
		v.policy = p
	}
}
