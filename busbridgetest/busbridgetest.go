// Package busbridgetest provides in-memory fakes of the busbridge
// collaborators: the host event loop and the bus library's connection,
// listener, watch, and timeout objects. They exist so that consumers of
// busbridge (and busbridge itself) can exercise reconciliation behaviour
// without a real bus daemon or poller.
//
// The fakes are not implementations of either collaborator; they record
// interactions and let tests script failures.
package busbridgetest

import (
	"sync"
	"time"

	"github.com/joeycumines/go-busbridge"
)

// HostLoop is an in-memory busbridge.HostLoop. It records registrations
// and interest masks, and can be scripted to fail.
type HostLoop struct {
	mu     sync.Mutex
	nextID int
	byFD   map[int]*hostRegistration

	// RegisterErr, when non-nil, is returned by the next Register call.
	RegisterErr error
	// DeregisterErr, when non-nil, is returned by every Deregister call
	// (the registration is still removed, modelling an already-removed
	// race).
	DeregisterErr error

	// Deregistered accumulates the descriptors of removed registrations.
	Deregistered []int
}

type hostRegistration struct {
	fd     int
	id     int
	events busbridge.PollEvents
}

// NewHostLoop constructs an empty fake host loop.
func NewHostLoop() *HostLoop {
	return &HostLoop{byFD: make(map[int]*hostRegistration)}
}

// Register implements busbridge.HostLoop.
func (l *HostLoop) Register(fd int) (busbridge.Registration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.RegisterErr; err != nil {
		l.RegisterErr = nil
		return nil, err
	}
	l.nextID++
	reg := &hostRegistration{fd: fd, id: l.nextID}
	l.byFD[fd] = reg
	return reg, nil
}

// SetInterest implements busbridge.HostLoop.
func (l *HostLoop) SetInterest(reg busbridge.Registration, events busbridge.PollEvents) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := reg.(*hostRegistration); ok {
		r.events = events
	}
}

// Deregister implements busbridge.HostLoop.
func (l *HostLoop) Deregister(reg busbridge.Registration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := reg.(*hostRegistration)
	if !ok {
		return busbridge.ErrDeregistrationFailed
	}
	if l.byFD[r.fd] == r {
		delete(l.byFD, r.fd)
	}
	l.Deregistered = append(l.Deregistered, r.fd)
	return l.DeregisterErr
}

// Registered reports whether fd currently has a registration.
func (l *HostLoop) Registered(fd int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.byFD[fd] != nil
}

// Interest returns the current interest mask for fd, or zero if fd is not
// registered.
func (l *HostLoop) Interest(fd int) busbridge.PollEvents {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r := l.byFD[fd]; r != nil {
		return r.events
	}
	return 0
}

// Registration returns the opaque handle for fd, for driving
// Bridge.HandleReady, or nil if fd is not registered.
func (l *HostLoop) Registration(fd int) busbridge.Registration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r := l.byFD[fd]; r != nil {
		return r
	}
	return nil
}

// Watch is a scriptable busbridge.Watch.
type Watch struct {
	mu sync.Mutex

	// FD is the descriptor the watch waits on.
	FD int
	// Interest is the watch's directional interest.
	Interest busbridge.WatchFlags
	// Disabled inverts Enabled.
	Disabled bool
	// HandleErr, when non-nil, is returned by Handle.
	HandleErr error

	handled []busbridge.WatchFlags
}

// Descriptor implements busbridge.Watch.
func (w *Watch) Descriptor() int { return w.FD }

// Flags implements busbridge.Watch.
func (w *Watch) Flags() busbridge.WatchFlags { return w.Interest }

// Enabled implements busbridge.Watch.
func (w *Watch) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.Disabled
}

// Handle implements busbridge.Watch, recording the delivered flags.
func (w *Watch) Handle(flags busbridge.WatchFlags) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handled = append(w.handled, flags)
	return w.HandleErr
}

// Handled returns every flag set delivered to Handle, in order.
func (w *Watch) Handled() []busbridge.WatchFlags {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]busbridge.WatchFlags, len(w.handled))
	copy(out, w.handled)
	return out
}

// SetDisabled flips the watch's enabled state.
func (w *Watch) SetDisabled(disabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Disabled = disabled
}

// Timeout is a scriptable busbridge.Timeout.
type Timeout struct {
	mu sync.Mutex

	// Delay is the requested interval.
	Delay time.Duration
	// Disabled inverts Enabled.
	Disabled bool
	// OnFire, when non-nil, runs inside Handle (e.g. to re-arm).
	OnFire func()

	fired int
}

// Interval implements busbridge.Timeout.
func (t *Timeout) Interval() time.Duration { return t.Delay }

// Enabled implements busbridge.Timeout.
func (t *Timeout) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.Disabled
}

// Handle implements busbridge.Timeout.
func (t *Timeout) Handle() {
	t.mu.Lock()
	t.fired++
	fn := t.OnFire
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Fired returns how many times the timeout has fired.
func (t *Timeout) Fired() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// SetDisabled flips the timeout's enabled state.
func (t *Timeout) SetDisabled(disabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Disabled = disabled
}
