package service

import (
	"time"

	"github.com/okian/retention/internal/adapters/ingest"
	"github.com/okian/retention/internal/adapters/suggest"
	"github.com/okian/retention/internal/domain/engine"
	"github.com/okian/retention/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the analysis engine.
func WithEngine(e *engine.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJobTimeout bounds a single job.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithSuggester sets the suggestion client.
func WithSuggester(sg suggest.Suggester) Option {
	return func(s *Service) {
		if sg != nil {
			s.suggester = sg
		}
	}
}

// WithScrapeOptions configures URL ingestion.
func WithScrapeOptions(opts ...ingest.ScrapeOption) Option {
	return func(s *Service) {
		s.scrapeOpts = append(s.scrapeOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScrapeTimeout bounds a whole URL ingestion, retries included.
func WithScrapeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.scrapeTimeout = d
		}
	}
}
