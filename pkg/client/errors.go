package client

import (
	"errors"
	"fmt"

	"github.com/sypht-team/sypht-go-client/pkg/auth"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of request errors, used for
// metrics and logging.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassAuth represents token refresh failures.
	ErrorClassAuth ErrorClass = "auth"
)

// RequestError represents a non-2xx response, carrying the status code and
// the response body verbatim.
type RequestError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed with status code (%d): %s", e.StatusCode, e.Body)
}

// isRetryableStatus reports whether a status code is a transient failure
// worth retrying. The set is deliberately explicit: other 4xx/5xx statuses
// fail immediately.
func isRetryableStatus(code int) bool {
	switch code {
	case 429, 502, 503, 504:
		return true
	default:
		return false
	}
}

// isRetryable reports whether an error from one attempt may be retried.
// Connection-level failures are retryable; authentication failures and
// non-transient statuses are not.
func isRetryable(err error) bool {
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return isRetryableStatus(reqErr.StatusCode)
	}

	return true
}

// classifyError categorizes an error for observability.
func classifyError(err error) ErrorClass {
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		return ErrorClassAuth
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.StatusCode == 429:
			return ErrorClassRateLimit
		case reqErr.StatusCode >= 400 && reqErr.StatusCode < 500:
			return ErrorClassClient
		case reqErr.StatusCode >= 500:
			return ErrorClassServer
		}
	}

	return ErrorClassNetwork
}
