// internal/api/response/response.go
package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/sigchart/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response. Errors outside the core taxonomy keep
// their text as the cause.
func Error(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: detailFor(err)}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func detailFor(err error) ErrorDetail {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		detail := ErrorDetail{Code: coreErr.Code, Message: coreErr.Message}
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
		return detail
	}

	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}
	if errors.Is(err, context.DeadlineExceeded) {
		detail.Code = "DEADLINE_EXCEEDED"
		detail.Message = "request timed out"
	}
	if err != nil {
		detail.Cause = err.Error()
	}
	return detail
}
