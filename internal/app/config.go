package service

import (
	"time"

	"github.com/okian/retention/internal/adapters/ingest"
	"github.com/okian/retention/internal/adapters/suggest"
	"github.com/okian/retention/internal/config"
	"github.com/okian/retention/internal/domain/analysis"
	"github.com/okian/retention/internal/domain/classify"
	"github.com/okian/retention/internal/domain/engine"
	"github.com/okian/retention/internal/domain/validate"
)

// EngineFromConfig builds the analysis engine described by cfg.
func EngineFromConfig(cfg *config.Config) (*engine.Engine, error) {
	policy, err := validate.ParseValuePolicy(cfg.ValuePolicy)
	if err != nil {
		return nil, err
	}
	return engine.New(
		engine.WithValidator(validate.New(validate.WithValuePolicy(policy))),
		engine.WithPolicy(analysis.Policy{
			EarlyWindow:      cfg.EarlyWindowSeconds,
			FinalFraction:    cfg.FinalFraction,
			DropoffThreshold: cfg.DropoffThreshold,
			HighlightCount:   cfg.HighlightCount,
		}),
		engine.WithClassifier(classify.New(
			classify.WithEarlyDropoff(cfg.EarlySevere, cfg.EarlyModerate),
			classify.WithFinalRetention(cfg.FinalSevere, cfg.FinalModerate),
		)),
	), nil
}

// SuggesterFromConfig builds the suggestion client described by cfg.
func SuggesterFromConfig(cfg *config.Config) *suggest.Client {
	return suggest.New(
		suggest.WithEndpoint(cfg.SuggestEndpoint),
		suggest.WithModel(cfg.SuggestModel),
		suggest.WithAPIKey(cfg.SuggestAPIKey),
		suggest.WithMaxTokens(cfg.SuggestMaxTokens),
		suggest.WithTemperature(cfg.SuggestTemperature),
		suggest.WithTimeout(time.Duration(cfg.SuggestTimeoutMS)*time.Millisecond),
	)
}

// ScrapeOptionsFromConfig returns the URL ingestion settings in cfg.
func ScrapeOptionsFromConfig(cfg *config.Config) []ingest.ScrapeOption {
	return []ingest.ScrapeOption{
		ingest.WithWindow(cfg.ScrapeWindow),
		ingest.WithSpacing(cfg.ScrapeSpacing),
		ingest.WithRetries(cfg.ScrapeRetries),
		ingest.WithFetcher(ingest.NewChromeFetcher(cfg.ChromeBin, 0)),
	}
}

// OptionsFromConfig wires every service dependency from cfg.
func OptionsFromConfig(cfg *config.Config) ([]Option, error) {
	eng, err := EngineFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithEngine(eng),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithJobTimeout(time.Duration(cfg.JobTimeoutMS) * time.Millisecond),
		WithSuggester(SuggesterFromConfig(cfg)),
		WithScrapeOptions(ScrapeOptionsFromConfig(cfg)...),
		WithScrapeTimeout(time.Duration(cfg.ScrapeTimeoutMS) * time.Millisecond),
	}, nil
}
