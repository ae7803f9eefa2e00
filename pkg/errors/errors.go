// Package errors defines the error taxonomy of the bulk loader: sentinel
// errors for each failure class and a RequestError that preserves the HTTP
// status of a failed bulk call so the retry layer can classify it.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrBulkRejected   = errors.New("bulk request rejected")
	ErrSourceRead     = errors.New("source read failed")
	ErrRetryExhausted = errors.New("retry budget exhausted")
)

// RequestError wraps a sentinel with the HTTP status and response detail of a
// failed bulk request.
type RequestError struct {
	Err        error
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Err.Error(), e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Err.Error(), e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// FromStatus converts a non-2xx HTTP status into a RequestError. Status 429
// wraps ErrRateLimited; everything else wraps ErrBulkRejected.
func FromStatus(statusCode int, message string) *RequestError {
	sentinel := ErrBulkRejected
	if statusCode == http.StatusTooManyRequests {
		sentinel = ErrRateLimited
	}
	return &RequestError{
		Err:        sentinel,
		StatusCode: statusCode,
		Message:    message,
	}
}

// IsRateLimited reports whether err represents an HTTP 429 response.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
