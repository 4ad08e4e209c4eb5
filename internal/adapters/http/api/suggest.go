package api

import (
	"net/http"

	service "github.com/okian/retention/internal/app"
	"github.com/okian/retention/internal/domain/model"
)

type suggestRequest struct {
	seriesRequest
	pairRequest
}

type suggestResponse struct {
	service.Suggestion
	Report     *model.Report     `json:"report,omitempty"`
	Comparison *model.Comparison `json:"comparison,omitempty"`
}

// SuggestHandler analyses a series (or a pair) and asks the suggestion model
// for advice on the result.
type SuggestHandler struct {
	deps Dependencies
}

// NewSuggestHandler creates a new suggest handler.
func NewSuggestHandler(deps Dependencies) *SuggestHandler {
	return &SuggestHandler{deps: deps}
}

// HandleSuggest handles POST /v1/suggest.
func (h *SuggestHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	ctx := r.Context()

	if req.A != nil || req.B != nil {
		if !req.complete() {
			writeFailure(w, malformed(ErrMissingPair))
			return
		}
		cmp, err := h.deps.Compare(ctx, req.A.input(), req.B.input())
		if err != nil {
			writeFailure(w, err)
			return
		}
		sg, err := h.deps.SuggestComparison(ctx, cmp)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, suggestResponse{Suggestion: sg, Comparison: &cmp})
		return
	}

	report, err := h.deps.Analyze(ctx, req.Label, req.Samples)
	if err != nil {
		writeFailure(w, err)
		return
	}
	sg, err := h.deps.SuggestReport(ctx, report)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{Suggestion: sg, Report: report})
}
