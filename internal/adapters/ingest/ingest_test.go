package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/retention/internal/domain/model"
	"github.com/okian/retention/internal/domain/validate"
	"github.com/okian/retention/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCSVSource(t *testing.T) {
	Convey("Given CSV input", t, func() {
		ctx := context.Background()

		Convey("When it has a header and rows", func() {
			src := NewCSVReader(strings.NewReader(" timestamp , retention_percentage\n0,100\n5, 92.5\n\n10,80\n"))
			records, err := src.Records(ctx)

			Convey("Then every row is keyed by the trimmed header", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 3)
				So(records[1][model.FieldTimestamp], ShouldEqual, "5")
				So(records[1][model.FieldRetention], ShouldEqual, "92.5")
			})
		})

		Convey("When a column is missing", func() {
			records, err := NewCSVReader(strings.NewReader("timestamp,views\n0,10\n")).Records(ctx)

			Convey("Then the rows simply lack that field", func() {
				So(err, ShouldBeNil)
				_, ok := records[0][model.FieldRetention]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When only a header without the required columns is present", func() {
			_, err := NewCSVReader(strings.NewReader("time,views\n")).Records(ctx)

			Convey("Then the schema error names both columns", func() {
				var schema *validate.SchemaError
				So(errors.As(err, &schema), ShouldBeTrue)
				So(schema.Missing, ShouldResemble, []string{model.FieldTimestamp, model.FieldRetention})
				So(errors.Is(err, validate.ErrSchema), ShouldBeTrue)
				So(model.DescribeError(err).Kind, ShouldEqual, "schema")
			})
		})

		Convey("When only a valid header is present", func() {
			records, err := NewCSVReader(strings.NewReader("timestamp,retention_percentage\n")).Records(ctx)

			Convey("Then there are simply no records", func() {
				So(err, ShouldBeNil)
				So(records, ShouldBeEmpty)
			})
		})

		Convey("When it is empty", func() {
			records, err := NewCSVReader(strings.NewReader("")).Records(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
		})

		Convey("When a quoted field is broken", func() {
			_, err := NewCSVReader(strings.NewReader("timestamp,retention_percentage\n0,\"10\n")).Records(ctx)
			So(errors.Is(err, ErrMalformed), ShouldBeTrue)
		})

		Convey("When reading a semicolon separated file", func() {
			path := filepath.Join(t.TempDir(), "a.csv")
			So(os.WriteFile(path, []byte("timestamp;retention_percentage\n0;55\n"), 0o600), ShouldBeNil)
			records, err := NewCSVFile(path, WithComma(';')).Records(ctx)
			So(err, ShouldBeNil)
			So(records[0][model.FieldRetention], ShouldEqual, "55")
		})

		Convey("When the file does not exist", func() {
			_, err := NewCSVFile(filepath.Join(t.TempDir(), "nope.csv")).Records(ctx)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestExtract(t *testing.T) {
	Convey("Given page markup with numbers", t, func() {
		markup := `<div id="42">12.5</div><span>-3.0</span> v1.2.3 <b>99.75</b>`

		Convey("When extracting with a wide window", func() {
			records := Extract(markup, 100, 5)

			Convey("Then decimal tokens become evenly spaced samples", func() {
				So(len(records), ShouldEqual, 4)
				So(records[0][model.FieldRetention], ShouldEqual, 12.5)
				So(records[1][model.FieldRetention], ShouldEqual, -3.0)
				So(records[2][model.FieldRetention], ShouldEqual, 1.2)
				So(records[3][model.FieldRetention], ShouldEqual, 99.75)
				So(records[3][model.FieldTimestamp], ShouldEqual, 15.0)
			})
		})

		Convey("When the window is smaller than the token count", func() {
			records := Extract(markup, 2, 5)

			Convey("Then only the trailing values are kept, restarting at zero", func() {
				So(len(records), ShouldEqual, 2)
				So(records[0][model.FieldTimestamp], ShouldEqual, 0.0)
				So(records[0][model.FieldRetention], ShouldEqual, 1.2)
				So(records[1][model.FieldRetention], ShouldEqual, 99.75)
			})
		})

		Convey("When there are no decimals", func() {
			So(Extract("<p>nothing 12 here</p>", 0, 0), ShouldBeEmpty)
		})
	})
}

func TestScrapeSource(t *testing.T) {
	Convey("Given a scrape source with a fake fetcher", t, func() {
		ctx := context.Background()
		calls := 0

		Convey("When the fetcher fails once then succeeds", func() {
			f := FetcherFunc(func(context.Context, string) (string, error) {
				calls++
				if calls == 1 {
					return "", errors.New("connection reset")
				}
				return "<p>80.0 70.0</p>", nil
			})
			src := NewScrapeSource("https://example.test/v", WithFetcher(f), WithBaseDelay(0),
				WithScrapeLogger(logger.Discard()), WithSpacing(10))
			records, err := src.Records(ctx)

			Convey("Then it retries and returns the series", func() {
				So(err, ShouldBeNil)
				So(calls, ShouldEqual, 2)
				So(len(records), ShouldEqual, 2)
				So(records[1][model.FieldTimestamp], ShouldEqual, 10.0)
			})
		})

		Convey("When every attempt fails", func() {
			f := FetcherFunc(func(context.Context, string) (string, error) {
				calls++
				return "", errors.New("down")
			})
			src := NewScrapeSource("https://example.test/v", WithFetcher(f), WithRetries(3),
				WithBaseDelay(0), WithScrapeLogger(logger.Discard()))
			_, err := src.Records(ctx)

			Convey("Then it reports an upstream fetch error", func() {
				So(calls, ShouldEqual, 3)
				So(errors.Is(err, ErrFetch), ShouldBeTrue)
				var k interface{ Kind() string }
				So(errors.As(err, &k), ShouldBeTrue)
				So(k.Kind(), ShouldEqual, "upstream")
			})
		})

		Convey("When the page has no numbers", func() {
			f := FetcherFunc(func(context.Context, string) (string, error) { return "<p>empty</p>", nil })
			src := NewScrapeSource("https://example.test/v", WithFetcher(f), WithScrapeLogger(logger.Discard()))
			_, err := src.Records(ctx)
			So(errors.Is(err, ErrNoValues), ShouldBeTrue)
		})
	})
}

func TestSourceHelpers(t *testing.T) {
	Convey("Static and FromSamples round out the Source helpers", t, func() {
		records := FromSamples([]model.Sample{{Timestamp: 0, Retention: 90}})
		got, err := Static(records).Records(context.Background())
		So(err, ShouldBeNil)
		So(got[0][model.FieldRetention], ShouldEqual, 90.0)
	})
}
