package busbridge

import "time"

// Watch is a bus-library-owned handle representing one directional (read
// or write) interest in a descriptor's readiness. The bus library may
// present two independent watches for the same descriptor, one per
// direction, added and removed in any order. Watches are tracked by
// reference identity; implementations must be comparable (pointer types
// are the norm).
type Watch interface {
	// Descriptor returns the file descriptor this watch waits on.
	Descriptor() int

	// Flags returns the directional interest of this watch.
	Flags() WatchFlags

	// Enabled reports whether the watch is currently enabled. Toggle
	// events consult this to choose between the add and remove paths.
	Enabled() bool

	// Handle delivers readiness to the bus library. flags carries the
	// directions that became ready. A non-nil error is logged and does
	// not abort processing of sibling watches.
	Handle(flags WatchFlags) error
}

// Timeout is a bus-library-owned delayed callback with no associated
// descriptor. Tracked by reference identity, like Watch.
type Timeout interface {
	// Interval returns the requested delay before firing.
	Interval() time.Duration

	// Enabled reports whether the timeout is currently enabled. Adding a
	// disabled timeout is a no-op success.
	Enabled() bool

	// Handle fires the timeout. The bus library may re-arm it from within
	// this call.
	Handle()
}

// WatchFunctions is the watch lifecycle hook set the core installs on a
// bus connection or listener. The zero value uninstalls.
type WatchFunctions struct {
	Add    func(Watch) error
	Remove func(Watch)
	Toggle func(Watch)
}

// TimeoutFunctions is the timeout lifecycle hook set the core installs on
// a bus connection or listener. The zero value uninstalls.
type TimeoutFunctions struct {
	Add    func(Timeout) error
	Remove func(Timeout)
	Toggle func(Timeout)
}

// Connection is the surface the core consumes from an active bus
// connection (outbound or accepted).
//
// The Set* installers may invoke the supplied hooks synchronously, before
// returning, to announce watches and timeouts that already exist. The
// query methods (DispatchStatus, Dispatch) must not re-enter the hook
// surface from the calling goroutine.
type Connection interface {
	// SetWatchFunctions installs the watch lifecycle hooks. An error
	// aborts the enclosing setup.
	SetWatchFunctions(WatchFunctions) error

	// SetTimeoutFunctions installs the timeout lifecycle hooks. An error
	// aborts the enclosing setup.
	SetTimeoutFunctions(TimeoutFunctions) error

	// SetDispatchStatusHandler installs the observer called when the
	// dispatch queue transitions between statuses.
	SetDispatchStatusHandler(func(DispatchStatus))

	// DispatchStatus reports whether queued dispatch work remains,
	// without performing any.
	DispatchStatus() DispatchStatus

	// Dispatch drains one dispatch cycle and reports the resulting
	// status.
	Dispatch() DispatchStatus
}

// Listener is the surface the core consumes from a bus listening
// endpoint. Listening endpoints never carry application dispatch state;
// accepting a peer happens inside the bus library's watch handler and is
// announced through the new-connection handler.
type Listener interface {
	// SetWatchFunctions installs the watch lifecycle hooks. An error
	// aborts the enclosing setup.
	SetWatchFunctions(WatchFunctions) error

	// SetTimeoutFunctions installs the timeout lifecycle hooks. An error
	// aborts the enclosing setup.
	SetTimeoutFunctions(TimeoutFunctions) error

	// SetNewConnectionHandler installs the callback invoked with each
	// accepted peer connection. A nil handler uninstalls.
	SetNewConnectionHandler(func(Connection))
}
