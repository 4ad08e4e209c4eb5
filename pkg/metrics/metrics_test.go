package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors use the given names", func() {
				So(m, ShouldNotBeNil)
				m.dropoffs.Add(2)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "test_unit_dropoffs_detected_total")
			})
		})

		Convey("When empty option values are given", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "retention")
				So(m.subsystem, ShouldEqual, "engine")
				So(len(m.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording analyses", func() {
			before := testutil.ToFloat64(globalManager.analyses.WithLabelValues("ok"))
			RecordAnalysis("ok", 1.5)
			RecordAnalysis("ok", 2.5)

			Convey("Then the outcome counter advances", func() {
				So(testutil.ToFloat64(globalManager.analyses.WithLabelValues("ok")), ShouldEqual, before+2)
			})
		})

		Convey("When recording drop-offs", func() {
			before := testutil.ToFloat64(globalManager.dropoffs)
			RecordDropoffs(3)
			RecordDropoffs(0)
			RecordDropoffs(-1)

			Convey("Then only positive counts are added", func() {
				So(testutil.ToFloat64(globalManager.dropoffs), ShouldEqual, before+3)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(10)
			UpdateQueueUtilization(0.7)
			UpdateWorkerCount(4)
			UpdateWorkerActiveCount(2)

			Convey("Then the last value wins", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.7)
				So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 2)
			})
		})

		Convey("When recording everything else", func() {
			So(func() {
				RecordComparison("partial")
				RecordBand("early_dropoff", "severe")
				RecordInsufficientData("final_retention")
				RecordScrape("ok", 120)
				RecordSuggestion("disabled", 0)
				RecordChartRendered("series")
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordWorkerProcessingLatency(3)
				RecordWorkerError()
				RecordHTTPRequest("/v1/analyze", "POST", "200")
				RecordHTTPRequestDuration("/v1/analyze", "POST", "200", 4)
				RecordErrorByComponent("ingest", "schema")
				UpdateSystemStats()
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
		})
	})
}

func TestRecordingConcurrency(t *testing.T) {
	Convey("Concurrent recording does not race", t, func() {
		before := testutil.ToFloat64(globalManager.comparisons.WithLabelValues("complete"))
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				RecordComparison("complete")
			}()
		}
		wg.Wait()
		So(testutil.ToFloat64(globalManager.comparisons.WithLabelValues("complete")), ShouldEqual, before+20)
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("The custom registry gathers the retention metrics", t, func() {
		RecordChartRendered("chapters")
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)
		found := false
		for _, f := range families {
			if f.GetName() == "retention_engine_charts_rendered_total" {
				found = true
			}
		}
		So(found, ShouldBeTrue)
	})
}
