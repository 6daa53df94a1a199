package busbridge

import (
	"sync"
	"time"
)

// fakeLoop is a minimal in-memory HostLoop for exercising the bridge.
type fakeLoop struct {
	mu            sync.Mutex
	nextID        int
	regs          map[int]*fakeReg
	registerErr   error
	deregisterErr error
	deregistered  []int
}

type fakeReg struct {
	fd     int
	id     int
	events PollEvents
}

func newFakeLoop() *fakeLoop {
	return &fakeLoop{regs: make(map[int]*fakeReg)}
}

func (l *fakeLoop) Register(fd int) (Registration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.registerErr; err != nil {
		return nil, err
	}
	l.nextID++
	reg := &fakeReg{fd: fd, id: l.nextID}
	l.regs[fd] = reg
	return reg, nil
}

func (l *fakeLoop) SetInterest(reg Registration, events PollEvents) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := reg.(*fakeReg); ok {
		r.events = events
	}
}

func (l *fakeLoop) Deregister(reg Registration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := reg.(*fakeReg)
	if !ok {
		return ErrDeregistrationFailed
	}
	if l.regs[r.fd] == r {
		delete(l.regs, r.fd)
	}
	l.deregistered = append(l.deregistered, r.fd)
	return l.deregisterErr
}

func (l *fakeLoop) registered(fd int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.regs[fd] != nil
}

func (l *fakeLoop) interest(fd int) PollEvents {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r := l.regs[fd]; r != nil {
		return r.events
	}
	return 0
}

func (l *fakeLoop) registration(fd int) Registration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r := l.regs[fd]; r != nil {
		return r
	}
	return nil
}

// stubWatch is a minimal Watch.
type stubWatch struct {
	fd        int
	flags     WatchFlags
	disabled  bool
	handleErr error
	handled   []WatchFlags
}

func (w *stubWatch) Descriptor() int   { return w.fd }
func (w *stubWatch) Flags() WatchFlags { return w.flags }
func (w *stubWatch) Enabled() bool     { return !w.disabled }
func (w *stubWatch) Handle(flags WatchFlags) error {
	w.handled = append(w.handled, flags)
	return w.handleErr
}

// stubTimeout is a minimal Timeout.
type stubTimeout struct {
	interval time.Duration
	disabled bool
	fired    int
	onFire   func()
}

func (t *stubTimeout) Interval() time.Duration { return t.interval }
func (t *stubTimeout) Enabled() bool           { return !t.disabled }
func (t *stubTimeout) Handle() {
	t.fired++
	if t.onFire != nil {
		t.onFire()
	}
}

// stubConn is a minimal Connection with a countable dispatch queue.
type stubConn struct {
	watchFns        WatchFunctions
	timeoutFns      TimeoutFunctions
	statusFn        func(DispatchStatus)
	pending         int
	dispatched      int
	watchFnsErr     error
	timeoutFnsErr   error
	announceOnWatch []*stubWatch // announced from inside SetWatchFunctions
}

func (c *stubConn) SetWatchFunctions(fns WatchFunctions) error {
	if c.watchFnsErr != nil {
		return c.watchFnsErr
	}
	c.watchFns = fns
	if fns.Add != nil {
		for _, w := range c.announceOnWatch {
			if err := fns.Add(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *stubConn) SetTimeoutFunctions(fns TimeoutFunctions) error {
	if c.timeoutFnsErr != nil {
		return c.timeoutFnsErr
	}
	c.timeoutFns = fns
	return nil
}

func (c *stubConn) SetDispatchStatusHandler(fn func(DispatchStatus)) {
	c.statusFn = fn
}

func (c *stubConn) DispatchStatus() DispatchStatus {
	if c.pending > 0 {
		return DispatchDataRemains
	}
	return DispatchComplete
}

func (c *stubConn) Dispatch() DispatchStatus {
	if c.pending > 0 {
		c.pending--
		c.dispatched++
	}
	return c.DispatchStatus()
}

// stubListener is a minimal Listener.
type stubListener struct {
	watchFns      WatchFunctions
	timeoutFns    TimeoutFunctions
	newConn       func(Connection)
	watchFnsErr   error
	timeoutFnsErr error
}

func (l *stubListener) SetWatchFunctions(fns WatchFunctions) error {
	if l.watchFnsErr != nil {
		return l.watchFnsErr
	}
	l.watchFns = fns
	return nil
}

func (l *stubListener) SetTimeoutFunctions(fns TimeoutFunctions) error {
	if l.timeoutFnsErr != nil {
		return l.timeoutFnsErr
	}
	l.timeoutFns = fns
	return nil
}

func (l *stubListener) SetNewConnectionHandler(fn func(Connection)) {
	l.newConn = fn
}

// newTestBridge wires a bridge over a fresh fake loop with a connection
// session, failing the test on setup errors.
func newTestBridge(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, options ...Option) (*Bridge, *fakeLoop, *stubConn, *Session) {
	t.Helper()
	loop := newFakeLoop()
	b, err := New(loop, options...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	conn := &stubConn{}
	s, err := b.SetupConnection(conn, nil)
	if err != nil {
		t.Fatalf("SetupConnection failed: %v", err)
	}
	return b, loop, conn, s
}
