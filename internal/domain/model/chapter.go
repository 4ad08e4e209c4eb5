package model

// Chapter is one of the five equal-width timestamp buckets.
type Chapter int

// Chapters in timeline order.
const (
	ChapterIntro Chapter = iota
	ChapterEarly
	ChapterMid
	ChapterLate
	ChapterEnding
)

// ChapterCount is the fixed number of buckets.
const ChapterCount = 5

var chapterLabels = [ChapterCount]string{"Intro", "Early", "Mid", "Late", "Ending"}

// AllChapters returns the buckets in timeline order.
func AllChapters() []Chapter {
	return []Chapter{ChapterIntro, ChapterEarly, ChapterMid, ChapterLate, ChapterEnding}
}

func (c Chapter) String() string {
	if c < 0 || int(c) >= ChapterCount {
		return "Unknown"
	}
	return chapterLabels[c]
}

// MarshalText encodes the chapter as its label.
func (c Chapter) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ChapterAverage is the mean retention of the samples that fell in one bucket.
type ChapterAverage struct {
	Chapter Chapter `json:"chapter" yaml:"chapter"`
	Average Metric  `json:"average" yaml:"average"`
	Count   int     `json:"count" yaml:"count"`
}

// ChapterAverages holds one entry per bucket, in timeline order.
type ChapterAverages [ChapterCount]ChapterAverage

// Get returns the average for c. Empty buckets, and chapters outside the
// enum, yield an undefined metric.
func (a ChapterAverages) Get(c Chapter) Metric {
	if c < 0 || int(c) >= ChapterCount {
		return Undefined()
	}
	return a[c].Average
}

// Empty lists the buckets that received no samples.
func (a ChapterAverages) Empty() []Chapter {
	var out []Chapter
	for _, ca := range a {
		if ca.Count == 0 {
			out = append(out, ca.Chapter)
		}
	}
	return out
}
