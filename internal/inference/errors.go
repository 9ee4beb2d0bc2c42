package inference

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
)

type Reason string

const (
	ReasonAuth      Reason = "auth"
	ReasonRateLimit Reason = "rate_limit"
	ReasonServer    Reason = "server"
	ReasonRequest   Reason = "request"
	ReasonNetwork   Reason = "network"
	ReasonEmpty     Reason = "empty"
)

// APIError describes a failed model call. Message never contains the credential.
type APIError struct {
	Provider   string
	Reason     Reason
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s error", e.Provider, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same request may succeed.
func (e *APIError) Retryable() bool {
	switch e.Reason {
	case ReasonRateLimit, ReasonServer, ReasonNetwork:
		return true
	}
	return false
}

// ReasonForStatus maps an HTTP error status to a failure reason.
func ReasonForStatus(statusCode int) Reason {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ReasonAuth
	case statusCode == http.StatusTooManyRequests:
		return ReasonRateLimit
	case statusCode >= 500:
		return ReasonServer
	default:
		return ReasonRequest
	}
}

// NewError wraps an APIError into an ApiError of the run.
func NewError(op string, err *APIError) error {
	return apperr.API(op, err)
}

// IsRetryable reports whether err carries a retryable APIError.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}
