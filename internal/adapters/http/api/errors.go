package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/retention/internal/adapters/suggest"
	service "github.com/okian/retention/internal/app"
	"github.com/okian/retention/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrMissingPair = errors.New("both a and b are required")
	ErrMissingURL  = errors.New("missing url")
	ErrBodyTooBig  = errors.New("request body too large")
)

// badRequest marks a decoding failure as malformed input.
type badRequest struct{ err error }

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }
func (e *badRequest) Kind() string  { return "malformed" }

func malformed(err error) error {
	return &badRequest{err: fmt.Errorf("%w: %w", ErrBadRequest, err)}
}

// classify maps a pipeline or adapter error to an HTTP status.
func classify(err error) (int, model.ErrorDetail) {
	detail := model.DescribeError(err)
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, ErrBodyTooBig), errors.As(err, &tooBig):
		detail.Kind = "too_large"
		return http.StatusRequestEntityTooLarge, detail
	case errors.Is(err, suggest.ErrDisabled):
		detail.Kind = "disabled"
		return http.StatusServiceUnavailable, detail
	case errors.Is(err, service.ErrNotStarted):
		detail.Kind = "unavailable"
		return http.StatusServiceUnavailable, detail
	case errors.Is(err, suggest.ErrUpstream), errors.Is(err, suggest.ErrEmptyAnswer):
		detail.Kind = "upstream"
		return http.StatusBadGateway, detail
	case errors.Is(err, context.DeadlineExceeded):
		detail.Kind = "timeout"
		return http.StatusGatewayTimeout, detail
	}

	switch detail.Kind {
	case "schema", "empty_series", "invalid_value", "out_of_range", "undefined_metric":
		return http.StatusUnprocessableEntity, detail
	case "malformed":
		return http.StatusBadRequest, detail
	case "backpressure":
		return http.StatusTooManyRequests, detail
	case "upstream":
		return http.StatusBadGateway, detail
	default:
		return http.StatusInternalServerError, detail
	}
}
