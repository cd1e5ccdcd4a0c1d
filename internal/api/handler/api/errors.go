// internal/api/handler/api/errors.go
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/newthinker/sigchart/internal/core"
)

// statusFor maps pipeline and source errors to HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNoCandles):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrParseFailed),
		errors.Is(err, core.ErrUploadInvalid),
		errors.Is(err, core.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, core.ErrSourceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
