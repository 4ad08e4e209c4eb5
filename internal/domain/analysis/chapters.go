package analysis

import (
	"math"

	"github.com/okian/retention/internal/domain/model"
)

// Chapters splits [min_ts, max_ts] into five equal-width bins, half-open on
// the right except the last, which also holds max_ts. When every sample
// shares one timestamp the whole series lands in Intro.
func Chapters(s model.Series) model.ChapterAverages {
	var out model.ChapterAverages
	for i, c := range model.AllChapters() {
		out[i] = model.ChapterAverage{Chapter: c, Average: model.Undefined()}
	}

	lo, hi, ok := s.Bounds()
	if !ok {
		return out
	}

	buckets := make([][]float64, model.ChapterCount)
	for i := 0; i < s.Len(); i++ {
		x := s.At(i)
		b := bucketOf(x.Timestamp, lo, hi)
		buckets[b] = append(buckets[b], x.Retention)
	}
	for i, vals := range buckets {
		out[i].Count = len(vals)
		out[i].Average = mean(vals)
	}
	return out
}

// bucketOf multiplies before dividing so that boundary timestamps such as
// 60 on [0,100] land exactly on their bin edge. Ranges too wide for that
// product are halved first.
func bucketOf(ts, lo, hi float64) int {
	span := hi - lo
	if span <= 0 {
		return 0
	}
	if ts >= hi {
		return model.ChapterCount - 1
	}
	var f float64
	if math.IsInf(span*model.ChapterCount, 1) {
		f = (ts/2 - lo/2) / (hi/2 - lo/2) * model.ChapterCount
	} else {
		f = (ts - lo) * model.ChapterCount / span
	}
	if !(f > 0) {
		return 0
	}
	if b := int(f); b < model.ChapterCount {
		return b
	}
	return model.ChapterCount - 1
}
