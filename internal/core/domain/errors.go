package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFacet indicates an operation named a facet that is not registered.
	ErrInvalidFacet = errors.New("invalid facet")

	// ErrStaleResponse indicates a backend response belongs to a superseded query.
	// Stale responses are discarded before any state is touched.
	ErrStaleResponse = errors.New("stale response")

	// ErrNotInitialized indicates the search session has not been initialised yet.
	ErrNotInitialized = errors.New("search session not initialised")

	// ErrBackend is the sentinel every BackendError unwraps to.
	ErrBackend = errors.New("backend error")

	// ErrRateLimited indicates the backend rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// BackendError reports a failed call to the course search backend.
// It matches ErrBackend with errors.Is, and the underlying cause with errors.As.
type BackendError struct {
	// Op names the backend operation, e.g. "search courses".
	Op string

	// Err is the underlying cause.
	Err error
}

// NewBackendError wraps err as a BackendError for op.
func NewBackendError(op string, err error) *BackendError {
	return &BackendError{Op: op, Err: err}
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("backend: %s failed", e.Op)
	}
	return fmt.Sprintf("backend: %s: %v", e.Op, e.Err)
}

// Unwrap exposes both the cause and the ErrBackend sentinel.
func (e *BackendError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBackend}
	}
	return []error{ErrBackend, e.Err}
}
