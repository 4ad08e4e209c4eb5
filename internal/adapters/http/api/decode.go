package api

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/retention/internal/adapters/ingest"
	"github.com/okian/retention/internal/adapters/render"
	"github.com/okian/retention/internal/domain/model"
)

// decodeJSON keeps numbers as json.Number; the validator accepts them.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return malformed(err)
	}
	return nil
}

func isCSV(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "text/csv"
}

// readSeries reads one labelled series from a JSON or CSV body. The label
// query parameter fills in a missing label.
func readSeries(r *http.Request) (string, []model.RawRecord, error) {
	label := r.URL.Query().Get("label")
	if isCSV(r) {
		records, err := ingest.NewCSVReader(r.Body).Records(r.Context())
		return label, records, err
	}
	var req seriesRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", nil, err
	}
	if req.Label == "" {
		req.Label = label
	}
	return req.Label, req.Samples, nil
}

// readSize parses optional width and height query parameters.
func readSize(q url.Values) (render.Size, error) {
	var size render.Size
	for _, p := range []struct {
		name string
		dst  *int
	}{{"width", &size.Width}, {"height", &size.Height}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return render.Size{}, malformed(fmt.Errorf("invalid %s %q", p.name, raw))
		}
		*p.dst = n
	}
	return size, nil
}

func checkURL(raw string) error {
	if raw == "" {
		return malformed(ErrMissingURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return malformed(err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return malformed(fmt.Errorf("unsupported url %q", raw))
	}
	return nil
}
