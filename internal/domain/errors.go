package domain

import "errors"

// Error taxonomy shared across services. Handlers dispatch on these with errors.Is.
var (
	// ErrInvalidRequest covers non-positive grams, missing prices and malformed
	// identities. Rejected before any state change.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInsufficientBalance is returned when a debit would take a balance below
	// zero. Rejected before any write.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrExecutorFailure wraps a failed or timed-out mint/burn call. The
	// reservation is always rolled back before this surfaces.
	ErrExecutorFailure = errors.New("executor failure")

	// ErrUpstreamUnavailable marks a read-only source that could not be reached.
	// Consumers degrade instead of failing outright.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrDataIntegrity marks a computed negative supply or a negative stored
	// balance outside a controlled debit rejection. Fatal to the operation that
	// found it; never clamped.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrNotFound is the generic missing-record sentinel for repositories.
	ErrNotFound = errors.New("not found")
)
