package api

import (
	"net/http"
)

// CompareHandler runs two pipelines side by side.
type CompareHandler struct {
	deps Dependencies
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(deps Dependencies) *CompareHandler {
	return &CompareHandler{deps: deps}
}

// HandleCompare handles POST /v1/compare. A side that fails is reported
// inside the body; the status stays 200.
func (h *CompareHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if !req.complete() {
		writeFailure(w, malformed(ErrMissingPair))
		return
	}
	cmp, err := h.deps.Compare(r.Context(), req.A.input(), req.B.input())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
