// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/retention/internal/adapters/render"
	service "github.com/okian/retention/internal/app"
	"github.com/okian/retention/internal/domain/engine"
	"github.com/okian/retention/internal/domain/model"
	"github.com/okian/retention/pkg/logger"
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	Analyze(ctx context.Context, label string, records []model.RawRecord) (*model.Report, error)
	AnalyzeURL(ctx context.Context, label, url string) (*model.Report, error)
	Compare(ctx context.Context, a, b engine.Input) (model.Comparison, error)
	Chart(ctx context.Context, w io.Writer, kind service.ChartKind, label string, records []model.RawRecord, size render.Size) error
	CompareChart(ctx context.Context, w io.Writer, a, b engine.Input, size render.Size) error
	SuggestReport(ctx context.Context, r *model.Report) (service.Suggestion, error)
	SuggestComparison(ctx context.Context, c model.Comparison) (service.Suggestion, error)
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	analyzeHandler *AnalyzeHandler
	compareHandler *CompareHandler
	chartHandler   *ChartHandler
	suggestHandler *SuggestHandler
	maxBodyBytes   int64
	log            logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes caps request bodies. Non-positive values are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		analyzeHandler: NewAnalyzeHandler(deps),
		compareHandler: NewCompareHandler(deps),
		chartHandler:   NewChartHandler(deps),
		suggestHandler: NewSuggestHandler(deps),
		maxBodyBytes:   defaultMaxBodyBytes,
		log:            logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/v1/analyze", s.wrap(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/v1/analyze/url", s.wrap(s.analyzeHandler.HandleAnalyzeURL, "analyze_url"))
	mux.HandleFunc("/v1/compare", s.wrap(s.compareHandler.HandleCompare, "compare"))
	mux.HandleFunc("/v1/chart", s.wrap(s.chartHandler.HandleChart, "chart"))
	mux.HandleFunc("/v1/suggest", s.wrap(s.suggestHandler.HandleSuggest, "suggest"))
}

// wrap applies the middleware chain used by every /v1 route.
func (s *Server) wrap(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return MetricsMiddleware(
		RequestIDMiddleware(
			LimitBodyMiddleware(postOnly(next), s.maxBodyBytes),
			s.log.Named(endpoint),
		),
		endpoint,
	)
}

func postOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		next(w, r)
	}
}

// seriesRequest mirrors the OpenAPI schema for one labelled series.
type seriesRequest struct {
	Label   string            `json:"label"`
	Samples []model.RawRecord `json:"samples"`
}

func (s seriesRequest) input() engine.Input {
	return engine.Input{Label: s.Label, Records: s.Samples}
}

// pairRequest mirrors the OpenAPI schema for POST /v1/compare.
type pairRequest struct {
	A *seriesRequest `json:"a"`
	B *seriesRequest `json:"b"`
}

func (p pairRequest) complete() bool { return p.A != nil && p.B != nil }

type urlRequest struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status and writes the error body.
func writeFailure(w http.ResponseWriter, err error) {
	status, detail := classify(err)
	writeJSON(w, status, errorResponse{Code: detail.Kind, Message: detail.Message, Missing: detail.Missing})
}
