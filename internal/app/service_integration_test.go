package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/retention/internal/adapters/ingest"
	service "github.com/okian/retention/internal/app"
	"github.com/okian/retention/internal/config"
	"github.com/okian/retention/internal/domain/model"
	"github.com/okian/retention/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_FromConfig(t *testing.T) {
	Convey("Given a service wired from configuration", t, func() {
		llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Cut the intro."}}]}`))
		}))
		defer llm.Close()

		cfg := config.New()
		cfg.WorkerCount = 2
		cfg.QueueSize = 4
		cfg.ValuePolicy = "reject"
		cfg.HighlightCount = 2
		cfg.ScrapeRetries = 1
		cfg.SuggestEndpoint = llm.URL
		cfg.SuggestAPIKey = "test-key"

		opts, err := service.OptionsFromConfig(cfg)
		So(err, ShouldBeNil)

		page := `<ul><li>100.0</li><li>91.5</li><li>70.25</li><li>68.0</li></ul>`
		fetcher := ingest.FetcherFunc(func(_ context.Context, url string) (string, error) {
			if url == "https://example.test/down" {
				return "", errors.New("unreachable")
			}
			return page, nil
		})
		opts = append(opts, service.WithScrapeOptions(ingest.WithFetcher(fetcher), ingest.WithBaseDelay(0)))

		svc := service.New(opts...)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When analyzing a scraped page", func() {
			r, err := svc.AnalyzeURL(ctx, "", "https://example.test/watch")

			Convey("Then timestamps are synthesised and the configured policy applies", func() {
				So(err, ShouldBeNil)
				So(r.Label, ShouldEqual, "https://example.test/watch")
				So(r.SampleCount, ShouldEqual, 4)
				So(len(r.Highlights), ShouldEqual, 2)
				So(r.Highlights[0].Retention, ShouldEqual, 100.0)
				So(r.Dropoffs, ShouldHaveLength, 1)
				So(r.Dropoffs[0].Sample.Timestamp, ShouldEqual, 10.0)
			})

			Convey("And the suggestion client is reached with the prompt", func() {
				sg, err := svc.SuggestReport(ctx, r)
				So(err, ShouldBeNil)
				So(sg.Suggestion, ShouldEqual, "Cut the intro.")
			})
		})

		Convey("When the page cannot be fetched", func() {
			_, err := svc.AnalyzeURL(ctx, "down", "https://example.test/down")

			Convey("Then the error is an upstream fetch failure", func() {
				So(errors.Is(err, ingest.ErrFetch), ShouldBeTrue)
				So(model.DescribeError(err).Kind, ShouldEqual, "upstream")
			})
		})

		Convey("When a value is out of range under the reject policy", func() {
			_, err := svc.Analyze(ctx, "odd", rows([2]float64{0, 100}, [2]float64{5, 140}))
			So(errors.Is(err, validate.ErrOutOfRange), ShouldBeTrue)
		})
	})

	Convey("Given an invalid value policy", t, func() {
		cfg := config.New()
		cfg.ValuePolicy = "wrap"
		_, err := service.OptionsFromConfig(cfg)
		So(err, ShouldNotBeNil)
	})
}
