// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Defaults live in New; Load layers .env, YAML and env vars on top.
//   - Credentials are only ever read from the environment or a config file.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`
	// JobTimeoutMS bounds how long a request waits for its job.
	JobTimeoutMS int `koanf:"job_timeout_ms"`

	EarlyWindowSeconds float64 `koanf:"early_window_seconds"`
	FinalFraction      float64 `koanf:"final_fraction"`
	DropoffThreshold   float64 `koanf:"dropoff_threshold"`
	HighlightCount     int     `koanf:"highlight_count"`

	// ValuePolicy is one of pass_through, clamp, reject.
	ValuePolicy string `koanf:"value_policy"`

	EarlySevere   float64 `koanf:"early_severe"`
	EarlyModerate float64 `koanf:"early_moderate"`
	FinalSevere   float64 `koanf:"final_severe"`
	FinalModerate float64 `koanf:"final_moderate"`

	// ScrapeWindow keeps the trailing N values of a scraped page.
	ScrapeWindow    int     `koanf:"scrape_window"`
	ScrapeSpacing   float64 `koanf:"scrape_spacing"`
	ScrapeTimeoutMS int     `koanf:"scrape_timeout_ms"`
	ScrapeRetries   int     `koanf:"scrape_retries"`
	// ChromeBin overrides the browser executable; empty uses the chromedp default lookup.
	ChromeBin string `koanf:"chrome_bin"`

	SuggestEndpoint    string  `koanf:"suggest_endpoint"`
	SuggestModel       string  `koanf:"suggest_model"`
	SuggestAPIKey      string  `koanf:"suggest_api_key"`
	SuggestMaxTokens   int     `koanf:"suggest_max_tokens"`
	SuggestTemperature float64 `koanf:"suggest_temperature"`
	SuggestTimeoutMS   int     `koanf:"suggest_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		MaxBodyBytes: 4 << 20,

		QueueSize:    1024,
		WorkerCount:  runtime.NumCPU(),
		JobTimeoutMS: 30_000,

		EarlyWindowSeconds: 30,
		FinalFraction:      0.9,
		DropoffThreshold:   -10,
		HighlightCount:     3,
		ValuePolicy:        "pass_through",

		EarlySevere:   40,
		EarlyModerate: 20,
		FinalSevere:   10,
		FinalModerate: 30,

		ScrapeWindow:    100,
		ScrapeSpacing:   5,
		ScrapeTimeoutMS: 30_000,
		ScrapeRetries:   3,

		SuggestEndpoint:    "https://api.openai.com/v1/chat/completions",
		SuggestModel:       "gpt-4o-mini",
		SuggestMaxTokens:   400,
		SuggestTemperature: 0.7,
		SuggestTimeoutMS:   30_000,
	}
}
