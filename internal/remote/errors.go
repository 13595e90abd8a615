// Package remote defines the error taxonomy shared by all clients of
// external services (document index, answer service, speech providers).
package remote

import "errors"

var (
	// ErrServiceUnavailable indicates a transient failure: network error,
	// timeout, or a 5xx from the remote service. Safe to retry with backoff.
	ErrServiceUnavailable = errors.New("remote service unavailable")

	// ErrNotFound indicates the remote resource no longer exists. Callers
	// should reconcile local state rather than retry.
	ErrNotFound = errors.New("remote resource not found")

	// ErrQuotaExceeded indicates the remote service refused the call for
	// quota reasons. Fatal for the current operation, never retried.
	ErrQuotaExceeded = errors.New("remote quota exceeded")
)
