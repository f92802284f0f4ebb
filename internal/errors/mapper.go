// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Error carries the HTTP status a failure should surface as.
// Message is what the client sees; Err keeps the cause for logging.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Map converts repo/infra errors into HTTP-friendly errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Status: http.StatusNotFound, Message: "record not found", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Status: http.StatusGatewayTimeout, Message: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &Error{Status: http.StatusRequestTimeout, Message: "request was canceled", Err: err}

	default:
		// fallback → bubble up error message for debugging
		return &Error{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}
}

// StatusOf returns the HTTP status and client message for any error.
func StatusOf(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	var appErr *Error
	if !errors.As(Map(err), &appErr) {
		return http.StatusInternalServerError, err.Error()
	}
	return appErr.Status, appErr.Message
}

// InvalidArgument creates a 400 error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Unauthorized creates a 401 error. Also used when a caller touches
// another user's resource.
func Unauthorized(msg string) error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// NotFound creates a 404 error.
func NotFound(msg string) error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// TooManyRequests creates a 429 error.
func TooManyRequests(msg string) error {
	return &Error{Status: http.StatusTooManyRequests, Message: msg}
}

// Internal wraps a downstream failure with a client-facing message.
func Internal(msg string, err error) error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Err: err}
}
