// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Row-level data errors. The offending row is dropped, the batch continues.
	ErrMissingTimestamp = &Error{Code: "MISSING_TIMESTAMP", Message: "no timestamp column value"}
	ErrInvalidTimestamp = &Error{Code: "INVALID_TIMESTAMP", Message: "timestamp could not be resolved"}
	ErrInvalidPrice     = &Error{Code: "INVALID_PRICE", Message: "price field is missing or not a finite number"}

	// Batch-level errors
	ErrNoCandles   = &Error{Code: "NO_CANDLES", Message: "no valid OHLCV data found"}
	ErrParseFailed = &Error{Code: "PARSE_FAILED", Message: "CSV could not be parsed"}
	ErrNoData      = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrSuperseded  = &Error{Code: "SUPERSEDED", Message: "a newer chart was rendered"}
	ErrBadRequest  = &Error{Code: "BAD_REQUEST", Message: "invalid request parameters"}

	// Transport errors
	ErrSourceUnavailable = &Error{Code: "SOURCE_UNAVAILABLE", Message: "data source unavailable"}
	ErrUploadInvalid     = &Error{Code: "UPLOAD_INVALID", Message: "upload could not be read"}
	ErrRateLimited       = &Error{Code: "RATE_LIMITED", Message: "too many requests"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
