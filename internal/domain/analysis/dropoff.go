package analysis

import "github.com/okian/retention/internal/domain/model"

// Dropoffs returns, in series order, every sample whose retention fell from
// its predecessor by strictly more than the threshold allows
// (delta < p.DropoffThreshold). The first sample has no predecessor.
func Dropoffs(s model.Series, p Policy) []model.DropoffEvent {
	out := []model.DropoffEvent{}
	for i := 1; i < s.Len(); i++ {
		cur := s.At(i)
		delta := cur.Retention - s.At(i-1).Retention
		if delta < p.DropoffThreshold {
			out = append(out, model.DropoffEvent{Sample: cur, Delta: delta})
		}
	}
	return out
}
