package model

// Band is a qualitative classification of a metric.
type Band string

// Bands from worst to best. BandInsufficientData is never produced by the
// classifier; reports use it for metrics that had no contributing samples.
const (
	BandSevere           Band = "severe"
	BandModerate         Band = "moderate"
	BandHealthy          Band = "healthy"
	BandInsufficientData Band = "insufficient_data"
)

// Rank orders the classified bands: Severe < Moderate < Healthy.
// BandInsufficientData and unknown values rank -1.
func (b Band) Rank() int {
	switch b {
	case BandSevere:
		return 0
	case BandModerate:
		return 1
	case BandHealthy:
		return 2 //nolint:mnd // ordinal
	default:
		return -1
	}
}

// Bands is the per-metric classification of a MetricsSummary.
type Bands struct {
	EarlyDropoff   Band `json:"early_dropoff" yaml:"early_dropoff"`
	FinalRetention Band `json:"final_retention" yaml:"final_retention"`
}
