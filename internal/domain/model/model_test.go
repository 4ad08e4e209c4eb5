package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/retention/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type kindedErr struct{}

func (kindedErr) Error() string           { return "missing things" }
func (kindedErr) Kind() string            { return "schema" }
func (kindedErr) MissingFields() []string { return []string{"timestamp"} }

func TestSeries(t *testing.T) {
	Convey("Given unordered samples with a timestamp tie", t, func() {
		in := []model.Sample{{Timestamp: 10, Retention: 1}, {Timestamp: 5, Retention: 2}, {Timestamp: 10, Retention: 3}, {Timestamp: 0, Retention: 4}}

		Convey("When building a series", func() {
			s := model.NewSeries(in)

			Convey("Then samples are ordered by timestamp and ties keep input order", func() {
				So(s.Len(), ShouldEqual, 4)
				So(s.Samples(), ShouldResemble, []model.Sample{
					{Timestamp: 0, Retention: 4},
					{Timestamp: 5, Retention: 2},
					{Timestamp: 10, Retention: 1},
					{Timestamp: 10, Retention: 3},
				})
			})

			Convey("And the series does not alias the input", func() {
				in[0].Retention = 99
				So(s.At(2).Retention, ShouldEqual, 1)
			})

			Convey("And bounds are the first and last timestamps", func() {
				lo, hi, ok := s.Bounds()
				So(ok, ShouldBeTrue)
				So(lo, ShouldEqual, 0)
				So(hi, ShouldEqual, 10)
			})
		})
	})

	Convey("Given an empty series", t, func() {
		var s model.Series
		_, _, ok := s.Bounds()
		So(ok, ShouldBeFalse)
		So(s.Retentions(), ShouldBeEmpty)
	})
}

func TestMetric(t *testing.T) {
	Convey("Given defined and undefined metrics", t, func() {
		Convey("Then undefined encodes as null and is distinct from zero", func() {
			b, err := json.Marshal(model.MetricsSummary{AverageRetention: model.DefinedMetric(0)})
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"average_retention":0,"early_dropoff":null,"final_retention":null}`)
		})

		Convey("Then decoding round-trips null", func() {
			var m model.Metric
			So(json.Unmarshal([]byte("null"), &m), ShouldBeNil)
			So(m.Defined, ShouldBeFalse)
			So(json.Unmarshal([]byte("12.5"), &m), ShouldBeNil)
			v, ok := m.Float()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 12.5)
		})

		Convey("Then String prints n/a for missing data", func() {
			So(model.Undefined().String(), ShouldEqual, "n/a")
			So(model.DefinedMetric(41.456).String(), ShouldEqual, "41.46")
		})

		Convey("Then Undefined lists metric names in a fixed order", func() {
			s := model.MetricsSummary{AverageRetention: model.DefinedMetric(1)}
			So(s.Undefined(), ShouldResemble, []string{model.MetricEarlyDropoff, model.MetricFinalRetention})
		})
	})
}

func TestChapters(t *testing.T) {
	Convey("Given chapter averages with empty buckets", t, func() {
		var a model.ChapterAverages
		for i, c := range model.AllChapters() {
			a[i].Chapter = c
		}
		a[model.ChapterIntro] = model.ChapterAverage{Chapter: model.ChapterIntro, Average: model.DefinedMetric(50), Count: 2}

		Convey("Then reading an empty bucket returns the no-data marker", func() {
			So(a.Get(model.ChapterMid).Defined, ShouldBeFalse)
			So(a.Get(model.Chapter(42)).Defined, ShouldBeFalse)
			So(a.Get(model.ChapterIntro).Value, ShouldEqual, 50)
		})

		Convey("Then Empty names the four buckets without data", func() {
			So(a.Empty(), ShouldResemble, []model.Chapter{model.ChapterEarly, model.ChapterMid, model.ChapterLate, model.ChapterEnding})
		})

		Convey("Then labels are fixed", func() {
			So(model.ChapterEnding.String(), ShouldEqual, "Ending")
			So(model.Chapter(-1).String(), ShouldEqual, "Unknown")
		})
	})
}

func TestBandRank(t *testing.T) {
	Convey("Bands are ordered severe < moderate < healthy", t, func() {
		So(model.BandSevere.Rank(), ShouldBeLessThan, model.BandModerate.Rank())
		So(model.BandModerate.Rank(), ShouldBeLessThan, model.BandHealthy.Rank())
		So(model.BandInsufficientData.Rank(), ShouldEqual, -1)
	})
}

func TestOutcomeJSON(t *testing.T) {
	Convey("Given a partial comparison", t, func() {
		cmp := model.Comparison{
			A: model.Outcome{Err: kindedErr{}},
			B: model.Outcome{Report: &model.Report{ID: "b", Label: "B"}},
		}

		Convey("Then it reports partial", func() {
			So(cmp.Partial(), ShouldBeTrue)
		})

		Convey("Then the failed side encodes its kind and missing fields", func() {
			b, err := json.Marshal(cmp)
			So(err, ShouldBeNil)
			var decoded map[string]map[string]any
			So(json.Unmarshal(b, &decoded), ShouldBeNil)
			So(decoded["a"]["report"], ShouldBeNil)
			errView := decoded["a"]["error"].(map[string]any)
			So(errView["kind"], ShouldEqual, "schema")
			So(errView["missing"], ShouldResemble, []any{"timestamp"})
			So(decoded["b"]["report"].(map[string]any)["label"], ShouldEqual, "B")
		})

		Convey("Then unknown errors describe as internal", func() {
			So(model.DescribeError(errors.New("boom")).Kind, ShouldEqual, "internal")
		})
	})
}
