package api

import (
	"bytes"
	"net/http"
	"strconv"

	service "github.com/okian/retention/internal/app"
)

// chartRequest carries either one series or an a/b pair.
type chartRequest struct {
	seriesRequest
	pairRequest
}

// ChartHandler draws PNG charts.
type ChartHandler struct {
	deps Dependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps Dependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandleChart handles POST /v1/chart?kind=series|chapters. A body with a and
// b draws both series on one chart and ignores kind.
func (h *ChartHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size, err := readSize(q)
	if err != nil {
		writeFailure(w, err)
		return
	}

	var (
		req chartRequest
		buf bytes.Buffer
	)
	if isCSV(r) {
		label, records, err := readSeries(r)
		if err != nil {
			writeFailure(w, err)
			return
		}
		req.Label, req.Samples = label, records
	} else if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	switch {
	case req.A != nil || req.B != nil:
		if !req.complete() {
			writeFailure(w, malformed(ErrMissingPair))
			return
		}
		err = h.deps.CompareChart(r.Context(), &buf, req.A.input(), req.B.input(), size)
	default:
		if req.Label == "" {
			req.Label = q.Get("label")
		}
		err = h.deps.Chart(r.Context(), &buf, service.ChartKind(q.Get("kind")), req.Label, req.Samples, size)
	}
	if err != nil {
		writeFailure(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
