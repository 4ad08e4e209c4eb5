package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/okian/retention/internal/domain/model"
)

// Summarize computes the overall average, early drop-off and final retention
// strength. A metric whose filtered subset is empty is undefined.
func Summarize(s model.Series, p Policy) model.MetricsSummary {
	_, maxTS, ok := s.Bounds()
	if !ok {
		return model.MetricsSummary{}
	}
	finalFrom := p.FinalFraction * maxTS

	return model.MetricsSummary{
		AverageRetention: meanWhere(s, func(model.Sample) bool { return true }),
		EarlyDropoff:     meanWhere(s, func(x model.Sample) bool { return x.Timestamp < p.EarlyWindow }),
		FinalRetention:   meanWhere(s, func(x model.Sample) bool { return x.Timestamp > finalFrom }),
	}
}

func meanWhere(s model.Series, keep func(model.Sample) bool) model.Metric {
	vals := make([]float64, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if x := s.At(i); keep(x) {
			vals = append(vals, x.Retention)
		}
	}
	return mean(vals)
}

func mean(vals []float64) model.Metric {
	if len(vals) == 0 {
		return model.Undefined()
	}
	return model.DefinedMetric(stat.Mean(vals, nil))
}
