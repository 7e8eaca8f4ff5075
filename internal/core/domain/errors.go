package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the core. Adapters map these onto their own
// surface (HTTP status codes, workflow failures, log levels).
var (
	// ErrNotFound means the traveler, alert, or responder ID is unknown.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition means an illegal status or alert state change was requested.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrTrackingDisabled means the traveler has not opted into real-time tracking.
	ErrTrackingDisabled = errors.New("real-time tracking disabled")

	// ErrNoResponderAvailable means the responder directory holds no active entries.
	// Callers treat this as a best-effort miss, not a failure.
	ErrNoResponderAvailable = errors.New("no responder available")

	// ErrInvalidCoordinate means a latitude/longitude pair is outside WGS 84 ranges.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// ValidationError reports a malformed or missing required field. It is the
// caller's fault and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// DeliveryError wraps a failed notification send. The triggering operation
// still succeeds; the error is surfaced as a warning.
type DeliveryError struct {
	Channel     string
	Destination string
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s via %s failed: %v", e.Destination, e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed storage write. It aborts the whole operation
// and no notification is attempted.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
