package api

import (
	"net/http"
)

// AnalyzeHandler runs single-video analyses.
type AnalyzeHandler struct {
	deps Dependencies
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

// HandleAnalyze handles POST /v1/analyze with a JSON series or a CSV body.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	label, records, err := readSeries(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	report, err := h.deps.Analyze(r.Context(), label, records)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleAnalyzeURL handles POST /v1/analyze/url.
func (h *AnalyzeHandler) HandleAnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if err := checkURL(req.URL); err != nil {
		writeFailure(w, err)
		return
	}
	report, err := h.deps.AnalyzeURL(r.Context(), req.Label, req.URL)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
