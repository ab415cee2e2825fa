// Package client provides the shared HTTP core used by every vendor API
// client and by the Tallyfy loader: request execution with rate limiting,
// bounded retry with exponential backoff, and the typed error taxonomy the
// orchestrator's error policy is built on.
package client

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned for HTTP 404. Getters treat it as absence, not
// failure.
var ErrNotFound = errors.New("resource not found")

// AuthError indicates invalid or expired credentials (HTTP 401/403). It is
// never retried and aborts the whole run.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// RateLimitError indicates HTTP 429. The request loop sleeps and retries a
// bounded number of times before surfacing it.
type RateLimitError struct {
	RetryAfter time.Duration // Parsed from Retry-After, zero when absent
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}

	return "rate limited"
}

// RequestError covers every other non-2xx response. 5xx are retried, other
// 4xx are surfaced immediately.
type RequestError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *RequestError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}

	return fmt.Sprintf("%s %s failed (HTTP %d): %s", e.Method, e.Path, e.StatusCode, body)
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var target *AuthError

	return errors.As(err, &target)
}

// IsRateLimit reports whether err is a rate-limit rejection.
func IsRateLimit(err error) bool {
	var target *RateLimitError

	return errors.As(err, &target)
}

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

/// retryable reports whether the request loop should try again: rate limits,
// server errors and transport failures are transient, everything typed is
// not.
func retryable(err error) bool {
	if IsAuth(err) || IsNotFound(err) {
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode >= 500
	}

	return true
}
