package busbridge

import "time"

// Registration is the host loop's opaque handle for one registered
// descriptor. Handles must be comparable; the bridge keys its shadow
// records by handle, so readiness delivery never dereferences a stale
// record pointer.
type Registration any

// HostLoop is the surface the core consumes from the host event loop. The
// host loop owns descriptor readiness at per-descriptor granularity: one
// registration, one interest mask.
//
// Implementations deliver readiness by calling [Bridge.HandleReady] with
// the handle returned from Register, and drive timers by calling
// [Bridge.Tick] periodically from the partition's service goroutine.
type HostLoop interface {
	// Register inserts a descriptor into the host loop with an empty
	// interest mask. Errors should match (via [errors.Is]) one of
	// [ErrDescriptorOutOfRange], [ErrAllocationFailure], or
	// [ErrRegistrationFailed]; any other error is treated like
	// ErrRegistrationFailed.
	Register(fd int) (Registration, error)

	// SetInterest replaces the interest mask for a registration. The mask
	// never contains PollHangup.
	SetInterest(reg Registration, events PollEvents)

	// Deregister removes a registration. Returns an error matching
	// [ErrDeregistrationFailed] if the registration cannot be located
	// (already-removed race); the bridge logs and absorbs it.
	Deregister(reg Registration) error
}

// TickSource is an optional capability for host loops that drive the
// bridge's periodic timer checks themselves. The bridge does not require
// it; owners may instead call [Bridge.Tick] from any periodic source on
// the partition's service goroutine.
type TickSource interface {
	// OnTick registers a periodic callback receiving the sampled time.
	OnTick(func(now time.Time))
}
