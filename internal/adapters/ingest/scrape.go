package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/okian/retention/internal/domain/model"
	"github.com/okian/retention/pkg/logger"
	"github.com/okian/retention/pkg/metrics"
)

const (
	DefaultWindow  = 100
	DefaultSpacing = 5.0

	defaultRetries   = 3
	defaultBaseDelay = 500 * time.Millisecond
)

// decimal tokens only; bare integers in markup are mostly ids and sizes.
var floatToken = regexp.MustCompile(`-?\d+\.\d+`)

// ScrapeSource derives a series from the numbers found on a web page. The
// last Window decimal tokens become retention values at timestamps 0,
// Spacing, 2*Spacing, and so on.
type ScrapeSource struct {
	url       string
	fetcher   Fetcher
	window    int
	spacing   float64
	retries   int
	baseDelay time.Duration
	logger    logger.Logger
}

// ScrapeOption configures a ScrapeSource.
type ScrapeOption func(*ScrapeSource)

// WithFetcher replaces the page fetcher.
func WithFetcher(f Fetcher) ScrapeOption {
	return func(s *ScrapeSource) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithWindow sets how many trailing values are kept.
func WithWindow(n int) ScrapeOption {
	return func(s *ScrapeSource) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithSpacing sets the synthetic timestamp step.
func WithSpacing(step float64) ScrapeOption {
	return func(s *ScrapeSource) {
		if step > 0 {
			s.spacing = step
		}
	}
}

// WithRetries sets the number of fetch attempts.
func WithRetries(n int) ScrapeOption {
	return func(s *ScrapeSource) {
		if n > 0 {
			s.retries = n
		}
	}
}

// WithBaseDelay sets the first backoff delay; it doubles per attempt.
func WithBaseDelay(d time.Duration) ScrapeOption {
	return func(s *ScrapeSource) {
		if d >= 0 {
			s.baseDelay = d
		}
	}
}

// WithScrapeLogger sets the logger.
func WithScrapeLogger(l logger.Logger) ScrapeOption {
	return func(s *ScrapeSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScrapeSource builds a source for url. Without WithFetcher it renders the
// page in headless Chrome.
func NewScrapeSource(url string, opts ...ScrapeOption) *ScrapeSource {
	s := &ScrapeSource{
		url:       url,
		window:    DefaultWindow,
		spacing:   DefaultSpacing,
		retries:   defaultRetries,
		baseDelay: defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = NewChromeFetcher("", 0)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("scrape")
	}
	return s
}

// Records fetches the page and extracts the series.
func (s *ScrapeSource) Records(ctx context.Context) ([]model.RawRecord, error) {
	start := time.Now()
	markup, err := s.fetch(ctx)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordScrape("fetch_failed", elapsed)
		return nil, withKind("upstream", fmt.Errorf("%w: %s: %w", ErrFetch, s.url, err))
	}

	records := Extract(markup, s.window, s.spacing)
	if len(records) == 0 {
		metrics.RecordScrape("no_values", elapsed)
		return nil, withKind("upstream", fmt.Errorf("%w: %s", ErrNoValues, s.url))
	}
	metrics.RecordScrape("ok", elapsed)
	s.logger.Debug(ctx, "page scraped",
		logger.String("url", s.url),
		logger.Int("values", len(records)),
	)
	return records, nil
}

// fetch retries with exponential backoff, giving up early when ctx ends.
func (s *ScrapeSource) fetch(ctx context.Context) (string, error) {
	var lastErr error
	delay := s.baseDelay
	for attempt := 1; attempt <= s.retries; attempt++ {
		markup, err := s.fetcher.Fetch(ctx, s.url)
		if err == nil {
			return markup, nil
		}
		lastErr = err
		if attempt == s.retries {
			break
		}
		s.logger.Warn(ctx, "fetch failed, retrying",
			logger.String("url", s.url),
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", s.retries),
			logger.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return "", fmt.Errorf("failed after %d attempts: %w", s.retries, lastErr)
}

// Extract pulls decimal tokens out of markup, keeps the trailing window and
// assigns evenly spaced timestamps starting at zero.
func Extract(markup string, window int, spacing float64) []model.RawRecord {
	if window <= 0 {
		window = DefaultWindow
	}
	if spacing <= 0 {
		spacing = DefaultSpacing
	}

	tokens := floatToken.FindAllString(markup, -1)
	values := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if len(values) > window {
		values = values[len(values)-window:]
	}

	out := make([]model.RawRecord, len(values))
	for i, v := range values {
		out[i] = model.RawRecord{
			model.FieldTimestamp: float64(i) * spacing,
			model.FieldRetention: v,
		}
	}
	return out
}
