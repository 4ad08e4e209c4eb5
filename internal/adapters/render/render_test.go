package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/okian/retention/internal/domain/engine"
	"github.com/okian/retention/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func series(points ...[2]float64) model.Series {
	samples := make([]model.Sample, len(points))
	for i, p := range points {
		samples[i] = model.Sample{Timestamp: p[0], Retention: p[1]}
	}
	return model.NewSeries(samples)
}

func records(s model.Series) []model.RawRecord {
	out := make([]model.RawRecord, s.Len())
	for i := 0; i < s.Len(); i++ {
		out[i] = model.RawRecord{model.FieldTimestamp: s.At(i).Timestamp, model.FieldRetention: s.At(i).Retention}
	}
	return out
}

func TestCharts(t *testing.T) {
	Convey("Given retention series", t, func() {
		video := series([2]float64{0, 100}, [2]float64{10, 85}, [2]float64{20, 60}, [2]float64{30, 58}, [2]float64{40, 40})
		var buf bytes.Buffer

		Convey("A series chart renders as PNG with drop-offs marked", func() {
			dropoffs := []model.DropoffEvent{{Sample: model.Sample{Timestamp: 20, Retention: 60}, Delta: -25}}
			So(SeriesChart(&buf, "Mine", video, dropoffs, Size{}), ShouldBeNil)
			So(bytes.HasPrefix(buf.Bytes(), pngMagic), ShouldBeTrue)
		})

		Convey("A single-sample series still renders", func() {
			So(SeriesChart(&buf, "One", series([2]float64{0, 50}), nil, Size{Width: 320, Height: 200}), ShouldBeNil)
			So(bytes.HasPrefix(buf.Bytes(), pngMagic), ShouldBeTrue)
		})

		Convey("An empty series is refused", func() {
			So(errors.Is(SeriesChart(&buf, "None", model.Series{}, nil, Size{}), ErrNoData), ShouldBeTrue)
		})

		Convey("A comparison chart tolerates one empty side", func() {
			So(ComparisonChart(&buf, "Mine", video, "Theirs", model.Series{}, Size{}), ShouldBeNil)
			So(bytes.HasPrefix(buf.Bytes(), pngMagic), ShouldBeTrue)
			So(errors.Is(ComparisonChart(&buf, "a", model.Series{}, "b", model.Series{}, Size{}), ErrNoData), ShouldBeTrue)
		})

		Convey("A chapter chart renders even with empty chapters", func() {
			r, err := engine.New().Analyze("flat", records(series([2]float64{5, 70}, [2]float64{5, 72})))
			So(err, ShouldBeNil)
			So(len(r.Chapters.Empty()), ShouldEqual, 4)
			So(ChapterChart(&buf, "flat", r.Chapters, Size{}), ShouldBeNil)
			So(bytes.HasPrefix(buf.Bytes(), pngMagic), ShouldBeTrue)
		})
	})
}

func TestPrompts(t *testing.T) {
	Convey("Given reports from the engine", t, func() {
		e := engine.New()
		video := series([2]float64{0, 50}, [2]float64{5, 60}, [2]float64{10, 45})
		report, err := e.Analyze("Your Video", records(video))
		So(err, ShouldBeNil)

		Convey("The single prompt carries every summary figure", func() {
			p, err := Prompt(report)
			So(err, ShouldBeNil)
			So(p, ShouldStartWith, "Analyze the retention data for Your Video:")
			So(p, ShouldContainSubstring, "Average Retention Score: 51.67%")
			So(p, ShouldContainSubstring, "Early Drop-Off: 51.67% (severe)")
			So(p, ShouldContainSubstring, "t=10.00s retention=45.00% change=-15.00")
			So(p, ShouldContainSubstring, "Intro=50.00%")
			So(p, ShouldContainSubstring, "better hooks")
		})

		Convey("Undefined metrics print as n/a", func() {
			late, err := e.Analyze("Late", records(series([2]float64{40, 70}, [2]float64{100, 60})))
			So(err, ShouldBeNil)
			p, err := Prompt(late)
			So(err, ShouldBeNil)
			So(p, ShouldContainSubstring, "Early Drop-Off: n/a (insufficient_data)")
			So(p, ShouldContainSubstring, "Insufficient data: early_dropoff")
		})

		Convey("A partial comparison prompt describes the failed side", func() {
			cmp := e.Compare(
				engine.Input{Label: "Mine", Records: records(video)},
				engine.Input{Label: "Theirs", Records: []model.RawRecord{{"time": 1}}},
			)
			p, err := ComparisonPrompt(cmp)
			So(err, ShouldBeNil)
			So(p, ShouldContainSubstring, "* Mine:")
			So(p, ShouldContainSubstring, "* Theirs:")
			So(p, ShouldContainSubstring, "No report: schema")
			So(strings.Count(p, "Average Retention Score"), ShouldEqual, 1)
		})

		Convey("A comparison with no report at all is refused", func() {
			_, err := ComparisonPrompt(model.Comparison{A: model.Outcome{Err: errors.New("x")}, B: model.Outcome{Err: errors.New("y")}})
			So(errors.Is(err, ErrNoData), ShouldBeTrue)
		})

		Convey("Text summarises a report", func() {
			var b strings.Builder
			So(Text(&b, report), ShouldBeNil)
			So(b.String(), ShouldStartWith, "Your Video (3 samples, id "+report.ID+")")
			So(errors.Is(Text(&b, nil), ErrNoData), ShouldBeTrue)
			_, err := Prompt(nil)
			So(errors.Is(err, ErrNoData), ShouldBeTrue)
		})
	})
}
