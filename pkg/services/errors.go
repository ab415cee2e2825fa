// Package services is the status console's service layer: read-only views
// over the checkpoint store for the API handlers.
package services

import (
	"errors"

	"github.com/tallyfy/migrator/pkg/checkpoint"
)

// Client errors, mapped to 4xx responses by the web layer.
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")
	ErrEmptyRunID     = errors.New("run id cannot be empty")
	ErrInvalidLimit   = errors.New("limit must be between 1 and 100")

	// ErrRunNotFound mirrors the store sentinel (404 Not Found).
	ErrRunNotFound = checkpoint.ErrRunNotFound

	// ErrNoReport means the run exists but never produced a report, e.g.
	// it is still running (404 Not Found).
	ErrNoReport = errors.New("run has no report")
)

// IsValidationError checks if an error should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrEmptyRunID) ||
		errors.Is(err, ErrInvalidLimit)
}

// IsNotFound checks if an error should return HTTP 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrNoReport)
}
