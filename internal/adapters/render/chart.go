// Package render draws retention charts and builds the text handed to people
// and to the suggestion model.
package render

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/retention/internal/domain/model"
	"github.com/okian/retention/pkg/metrics"
)

const (
	defaultWidth  = 1024
	defaultHeight = 480
)

// Size is the pixel size of a chart.
type Size struct {
	Width, Height int
}

func (s Size) orDefault() Size {
	if s.Width <= 0 {
		s.Width = defaultWidth
	}
	if s.Height <= 0 {
		s.Height = defaultHeight
	}
	return s
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: 2}
}

// pointStyle renders points only.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    5,
		DotColor:    col,
	}
}

// bounds tracks the data extent so axes never collapse to a zero range.
type bounds struct {
	xmin, xmax, ymin, ymax float64
	set                    bool
}

func (b *bounds) add(x, y float64) {
	if !b.set {
		b.xmin, b.xmax, b.ymin, b.ymax, b.set = x, x, y, y, true
		return
	}
	b.xmin, b.xmax = math.Min(b.xmin, x), math.Max(b.xmax, x)
	b.ymin, b.ymax = math.Min(b.ymin, y), math.Max(b.ymax, y)
}

func (b *bounds) ranges() (*chart.ContinuousRange, *chart.ContinuousRange) {
	xmin, xmax := b.xmin, b.xmax
	if xmax <= xmin {
		xmax = xmin + 1
	}
	ymin, ymax := math.Min(0, b.ymin), math.Max(100, b.ymax)
	return &chart.ContinuousRange{Min: xmin, Max: xmax}, &chart.ContinuousRange{Min: ymin, Max: ymax}
}

// continuous builds a series, padding a single point to two so go-chart can
// draw it.
func continuous(name string, xs, ys []float64, style chart.Style) chart.ContinuousSeries {
	if len(xs) == 1 {
		xs = []float64{xs[0], xs[0]}
		ys = []float64{ys[0], ys[0]}
	}
	return chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: style}
}

func seriesFor(name string, s model.Series, col drawing.Color, b *bounds) chart.ContinuousSeries {
	xs := make([]float64, s.Len())
	ys := make([]float64, s.Len())
	for i := 0; i < s.Len(); i++ {
		sm := s.At(i)
		xs[i], ys[i] = sm.Timestamp, sm.Retention
		b.add(sm.Timestamp, sm.Retention)
	}
	return continuous(name, xs, ys, lineStyle(col))
}

func dropoffSeries(name string, events []model.DropoffEvent, col drawing.Color) (chart.ContinuousSeries, bool) {
	if len(events) == 0 {
		return chart.ContinuousSeries{}, false
	}
	xs := make([]float64, len(events))
	ys := make([]float64, len(events))
	for i, e := range events {
		xs[i], ys[i] = e.Sample.Timestamp, e.Sample.Retention
	}
	return continuous(name, xs, ys, pointStyle(col)), true
}

func lineChart(w io.Writer, title string, size Size, b *bounds, series []chart.Series) error {
	size = size.orDefault()
	xr, yr := b.ranges()
	ch := chart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 12}},
		XAxis:      chart.XAxis{Name: "Timestamp (s)", Range: xr},
		YAxis:      chart.YAxis{Name: "Retention (%)", Range: yr},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %q: %w", title, err)
	}
	return nil
}

// SeriesChart draws one video's retention curve with its drop-offs marked.
func SeriesChart(w io.Writer, label string, s model.Series, dropoffs []model.DropoffEvent, size Size) error {
	if s.Len() == 0 {
		return ErrNoData
	}
	var b bounds
	series := []chart.Series{seriesFor(label, s, chart.ColorBlue, &b)}
	if d, ok := dropoffSeries("Drop-offs", dropoffs, chart.ColorRed); ok {
		series = append(series, d)
	}
	if err := lineChart(w, label+" Audience Retention Over Time", size, &b, series); err != nil {
		return err
	}
	metrics.RecordChartRendered("series")
	return nil
}

// ComparisonChart overlays two retention curves. An empty side is skipped.
func ComparisonChart(w io.Writer, labelA string, a model.Series, labelB string, b model.Series, size Size) error {
	if a.Len() == 0 && b.Len() == 0 {
		return ErrNoData
	}
	var bb bounds
	var series []chart.Series
	if a.Len() > 0 {
		series = append(series, seriesFor(labelA, a, chart.ColorBlue, &bb))
	}
	if b.Len() > 0 {
		series = append(series, seriesFor(labelB, b, chart.ColorRed, &bb))
	}
	if err := lineChart(w, "Retention Comparison: "+labelA+" vs. "+labelB, size, &bb, series); err != nil {
		return err
	}
	metrics.RecordChartRendered("comparison")
	return nil
}

// ChapterChart draws the five chapter averages as bars. Empty chapters get a
// zero-height bar labelled "(no data)".
func ChapterChart(w io.Writer, label string, chapters model.ChapterAverages, size Size) error {
	size = size.orDefault()
	bars := make([]chart.Value, 0, model.ChapterCount)
	lo, hi := 0.0, 100.0
	for _, c := range model.AllChapters() {
		v, ok := chapters.Get(c).Float()
		name := c.String()
		if !ok {
			v, name = 0, name+" (no data)"
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		bars = append(bars, chart.Value{Label: name, Value: v})
	}
	bc := chart.BarChart{
		Title:      label + " Chapter-Based Retention",
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   size.Width / (2 * model.ChapterCount),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Bars:       bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chapters: %w", err)
	}
	metrics.RecordChartRendered("chapters")
	return nil
}
