package analysis

import (
	"sort"

	"github.com/okian/retention/internal/domain/model"
)

// Highlights returns up to p.HighlightCount samples with the highest
// retention, highest first. Ties keep series order.
func Highlights(s model.Series, p Policy) []model.Sample {
	all := s.Samples()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Retention > all[j].Retention })
	if len(all) > p.HighlightCount {
		all = all[:p.HighlightCount]
	}
	return all
}
