// Package service wires the analysis engine, the job queue, the worker pool
// and the ingestion, render and suggestion adapters behind one API used by
// the HTTP server and the CLI.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/retention/internal/adapters/ingest"
	"github.com/okian/retention/internal/adapters/mq/queue"
	"github.com/okian/retention/internal/adapters/mq/worker"
	"github.com/okian/retention/internal/adapters/render"
	"github.com/okian/retention/internal/adapters/suggest"
	"github.com/okian/retention/internal/domain/engine"
	"github.com/okian/retention/internal/domain/model"
	"github.com/okian/retention/pkg/logger"
	"github.com/okian/retention/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// ChartKind selects what Chart draws.
type ChartKind string

const (
	ChartSeries   ChartKind = "series"
	ChartChapters ChartKind = "chapters"
)

// Service runs analyses on a bounded worker pool.
type Service struct {
	mu sync.RWMutex

	engine     *engine.Engine
	suggester  suggest.Suggester
	scrapeOpts []ingest.ScrapeOption

	jobQueue *queue.InMemoryQueue
	pool     *worker.Pool

	workerCount   int
	queueSize     int
	jobTimeout    time.Duration
	scrapeTimeout time.Duration

	started   bool
	startedAt time.Time
	cancel    context.CancelFunc

	analyses    atomic.Int64
	failures    atomic.Int64
	comparisons atomic.Int64
	rejected    atomic.Int64

	logger logger.Logger
}

// New constructs a Service. Dependencies not supplied by options get defaults.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		queueSize:     1024,
		jobTimeout:    30 * time.Second,
		scrapeTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = engine.New()
	}
	return s
}

// Engine returns the analysis engine.
func (s *Service) Engine() *engine.Engine { return s.engine }

// Start creates the queue and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.suggester == nil {
		s.suggester = suggest.New(suggest.WithLogger(s.logger))
	}

	// the pool outlives the caller's ctx; Stop cancels it
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobQueue,
		worker.WithPoolLogger(s.logger.Named("pool")),
		worker.WithWorkerOptions(worker.WithJobTimeout(s.jobTimeout)),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "retention service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("suggestions", s.suggester.Enabled()),
	)
	return nil
}

// Stop drains queued jobs and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.cancel()
	s.started = false
	s.logger.Info(ctx, "retention service stopped")
}

// submit runs task on the pool and waits for its result.
func (s *Service) submit(ctx context.Context, kind string, task queue.Task) (any, error) {
	s.mu.RLock()
	started, q := s.started, s.jobQueue
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	job, result := queue.NewJob(kind, task)
	if err := q.Enqueue(ctx, job); err != nil {
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			s.rejected.Add(1)
			return nil, &kindError{err: fmt.Errorf("%w: %w", ErrBackpressure, err), kind: "backpressure"}
		}
		return nil, err
	}

	select {
	case r := <-result:
		return r.Value, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Analyze runs the single-video pipeline on raw records.
func (s *Service) Analyze(ctx context.Context, label string, records []model.RawRecord) (*model.Report, error) {
	v, err := s.submit(ctx, "analyze", func(context.Context) (any, error) {
		return s.analyze(label, records)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Report), nil
}

// AnalyzeSource reads records from src on a worker and analyses them.
func (s *Service) AnalyzeSource(ctx context.Context, label string, src ingest.Source) (*model.Report, error) {
	v, err := s.submit(ctx, "analyze", func(jobCtx context.Context) (any, error) {
		records, err := src.Records(jobCtx)
		if err != nil {
			s.observe(nil, err, time.Now())
			return nil, err
		}
		return s.analyze(label, records)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Report), nil
}

// AnalyzeURL scrapes url into a series and analyses it.
func (s *Service) AnalyzeURL(ctx context.Context, label, url string) (*model.Report, error) {
	if label == "" {
		label = url
	}
	src := ingest.NewScrapeSource(url, append([]ingest.ScrapeOption{ingest.WithScrapeLogger(s.logger)}, s.scrapeOpts...)...)
	ctx, cancel := context.WithTimeout(ctx, s.scrapeTimeout)
	defer cancel()
	return s.AnalyzeSource(ctx, label, src)
}

func (s *Service) analyze(label string, records []model.RawRecord) (*model.Report, error) {
	start := time.Now()
	report, err := s.engine.Analyze(label, records)
	s.observe(report, err, start)
	return report, err
}

// observe records metrics for one finished pipeline.
func (s *Service) observe(report *model.Report, err error, start time.Time) {
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		s.failures.Add(1)
		metrics.RecordAnalysis(model.DescribeError(err).Kind, elapsed)
		return
	}
	s.analyses.Add(1)
	metrics.RecordAnalysis("ok", elapsed)
	metrics.RecordDropoffs(len(report.Dropoffs))
	metrics.RecordBand(model.MetricEarlyDropoff, string(report.Bands.EarlyDropoff))
	metrics.RecordBand(model.MetricFinalRetention, string(report.Bands.FinalRetention))
	for _, reason := range report.InsufficientData {
		metrics.RecordInsufficientData(reason)
	}
}

// Compare runs both pipelines as one job; each side fails independently.
func (s *Service) Compare(ctx context.Context, a, b engine.Input) (model.Comparison, error) {
	v, err := s.submit(ctx, "compare", func(context.Context) (any, error) {
		start := time.Now()
		cmp := s.engine.Compare(a, b)
		s.observe(cmp.A.Report, cmp.A.Err, start)
		s.observe(cmp.B.Report, cmp.B.Err, start)
		return cmp, nil
	})
	if err != nil {
		return model.Comparison{}, err
	}
	cmp := v.(model.Comparison)
	s.comparisons.Add(1)
	switch {
	case cmp.Partial():
		metrics.RecordComparison("partial")
	case cmp.A.OK():
		metrics.RecordComparison("complete")
	default:
		metrics.RecordComparison("failed")
	}
	return cmp, nil
}

// Chart validates records and draws the requested chart as PNG into w.
func (s *Service) Chart(ctx context.Context, w io.Writer, kind ChartKind, label string, records []model.RawRecord, size render.Size) error {
	if kind == "" {
		kind = ChartSeries
	}
	if kind != ChartSeries && kind != ChartChapters {
		return &kindError{err: fmt.Errorf("%w: %q", ErrUnknownChart, kind), kind: "malformed"}
	}
	return s.draw(ctx, w, func(buf *bytes.Buffer) error {
		series, err := s.engine.Validate(records)
		if err != nil {
			return err
		}
		report := s.engine.AnalyzeSeries(label, series)
		if kind == ChartChapters {
			return render.ChapterChart(buf, label, report.Chapters, size)
		}
		return render.SeriesChart(buf, label, series, report.Dropoffs, size)
	})
}

// CompareChart overlays both series. A side that fails validation is left out.
func (s *Service) CompareChart(ctx context.Context, w io.Writer, a, b engine.Input, size render.Size) error {
	return s.draw(ctx, w, func(buf *bytes.Buffer) error {
		sa, errA := s.validateInput(a)
		sb, errB := s.validateInput(b)
		if errA != nil && errB != nil {
			return errA
		}
		return render.ComparisonChart(buf, a.Label, sa, b.Label, sb, size)
	})
}

func (s *Service) validateInput(in engine.Input) (model.Series, error) {
	if in.Err != nil {
		return model.Series{}, in.Err
	}
	return s.engine.Validate(in.Records)
}

// draw renders on a worker into a buffer, then copies it to w on the
// caller's goroutine.
func (s *Service) draw(ctx context.Context, w io.Writer, paint func(*bytes.Buffer) error) error {
	v, err := s.submit(ctx, "chart", func(context.Context) (any, error) {
		var buf bytes.Buffer
		if err := paint(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return err
	}
	_, err = w.Write(v.([]byte))
	return err
}

// Suggestion is a prompt and the advice it produced.
type Suggestion struct {
	Prompt     string `json:"prompt" yaml:"prompt"`
	Suggestion string `json:"suggestion" yaml:"suggestion"`
}

// SuggestReport asks the suggestion model about one report.
func (s *Service) SuggestReport(ctx context.Context, r *model.Report) (Suggestion, error) {
	prompt, err := render.Prompt(r)
	if err != nil {
		return Suggestion{}, err
	}
	return s.suggest(ctx, prompt)
}

// SuggestComparison asks the suggestion model about a comparison.
func (s *Service) SuggestComparison(ctx context.Context, c model.Comparison) (Suggestion, error) {
	prompt, err := render.ComparisonPrompt(c)
	if err != nil {
		return Suggestion{}, err
	}
	return s.suggest(ctx, prompt)
}

func (s *Service) suggest(ctx context.Context, prompt string) (Suggestion, error) {
	s.mu.RLock()
	sg := s.suggester
	s.mu.RUnlock()
	if sg == nil {
		return Suggestion{Prompt: prompt}, ErrNotStarted
	}
	text, err := sg.Suggest(ctx, prompt)
	return Suggestion{Prompt: prompt, Suggestion: text}, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"analyses":    s.analyses.Load(),
		"failures":    s.failures.Load(),
		"comparisons": s.comparisons.Load(),
		"rejected":    s.rejected.Load(),
		"policy":      s.engine.Policy(),
	}
	if s.started {
		stats["queueLength"] = s.jobQueue.Len(context.Background())
		stats["activeWorkers"] = s.pool.Active()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["suggestions"] = s.suggester.Enabled()
	}
	metrics.UpdateSystemStats()
	return stats
}
