// Package analysis derives metrics, drop-off events, highlights and chapter
// averages from a validated retention series. Every function is pure.
package analysis

// Default policy values.
const (
	defaultEarlyWindow      = 30.0
	defaultFinalFraction    = 0.9
	defaultDropoffThreshold = -10.0
	defaultHighlightCount   = 3
)

// Policy holds the tunable numbers of the analysis.
type Policy struct {
	// EarlyWindow is the absolute timestamp bound (seconds) of the early
	// drop-off window: samples with timestamp < EarlyWindow.
	EarlyWindow float64
	// FinalFraction selects samples with timestamp > FinalFraction*max.
	FinalFraction float64
	// DropoffThreshold flags deltas strictly below it (percentage points).
	DropoffThreshold float64
	// HighlightCount is the number of top samples to keep.
	HighlightCount int
}

// DefaultPolicy returns the thresholds the reports have always used.
func DefaultPolicy() Policy {
	return Policy{
		EarlyWindow:      defaultEarlyWindow,
		FinalFraction:    defaultFinalFraction,
		DropoffThreshold: defaultDropoffThreshold,
		HighlightCount:   defaultHighlightCount,
	}
}

// Normalized replaces unusable values with defaults.
func (p Policy) Normalized() Policy {
	d := DefaultPolicy()
	if p.EarlyWindow <= 0 {
		p.EarlyWindow = d.EarlyWindow
	}
	if p.FinalFraction <= 0 || p.FinalFraction >= 1 {
		p.FinalFraction = d.FinalFraction
	}
	if p.DropoffThreshold >= 0 {
		p.DropoffThreshold = d.DropoffThreshold
	}
	if p.HighlightCount <= 0 {
		p.HighlightCount = d.HighlightCount
	}
	return p
}
