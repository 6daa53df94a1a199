package busbridge

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrDescriptorOutOfRange is returned when a watch names a descriptor
	// outside the host loop's addressable capacity. The rejection is
	// permanent for that descriptor; callers must not retry.
	ErrDescriptorOutOfRange = errors.New("busbridge: descriptor out of range")

	// ErrDescriptorConflict is returned when a watch names a descriptor
	// whose shadow record is owned by a different session.
	ErrDescriptorConflict = errors.New("busbridge: descriptor already bound to another session")

	// ErrAllocationFailure is returned by host loops on resource
	// exhaustion. Callers should fail the enclosing setup or retry later.
	ErrAllocationFailure = errors.New("busbridge: resource exhaustion")

	// ErrRegistrationFailed is returned when the host loop rejects
	// insertion of a descriptor. Fatal to the enclosing registration
	// attempt; the partially-built shadow record is rolled back.
	ErrRegistrationFailed = errors.New("busbridge: host loop registration failed")

	// ErrDeregistrationFailed is returned when the host loop cannot locate
	// a registration being removed (an already-removed race). Logged and
	// absorbed wherever it occurs during opportunistic cleanup.
	ErrDeregistrationFailed = errors.New("busbridge: host loop deregistration failed")

	// ErrSetupFailed is returned when the bus library rejects hook
	// installation during SetupConnection or SetupListener.
	ErrSetupFailed = errors.New("busbridge: hook installation rejected")

	// ErrNilHostLoop is returned by New when no host loop is supplied.
	ErrNilHostLoop = errors.New("busbridge: nil host loop")

	// ErrNilEndpoint is returned by SetupConnection and SetupListener when
	// the bus object is nil.
	ErrNilEndpoint = errors.New("busbridge: nil bus endpoint")
)

// WrapError combines a package sentinel with an underlying cause. The
// result matches both via [errors.Is].
func WrapError(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// HandlerError wraps a failure reported by a per-watch readiness handler.
// Handler failures are logged and absorbed: processing continues for
// sibling watches on the same descriptor, and nothing is propagated to the
// host loop (a stuck service thread is worse than a missed notification).
type HandlerError struct {
	Err        error
	Descriptor int
	Flags      WatchFlags
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("busbridge: watch handler failed (fd %d, %s): %v",
		e.Descriptor, e.Flags, e.Err)
}

// Unwrap returns the underlying handler error, enabling [errors.Is] and
// [errors.As] through the cause chain.
func (e *HandlerError) Unwrap() error {
	return e.Err
}
