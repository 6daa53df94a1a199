package busbridgetest

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/joeycumines/go-busbridge"
)

// Connection is a scriptable busbridge.Connection with a real FIFO
// dispatch queue backing DispatchStatus and Dispatch.
type Connection struct {
	mu sync.Mutex

	watchFns   busbridge.WatchFunctions
	timeoutFns busbridge.TimeoutFunctions
	statusFn   func(busbridge.DispatchStatus)

	dispatch *queue.Queue // of func()

	// WatchFunctionsErr, when non-nil, is returned by SetWatchFunctions.
	WatchFunctionsErr error
	// TimeoutFunctionsErr, when non-nil, is returned by
	// SetTimeoutFunctions.
	TimeoutFunctionsErr error

	// InitialWatches are announced through the hooks from inside
	// SetWatchFunctions, modelling a bus library that already holds
	// watches when the hooks are installed.
	InitialWatches []*Watch

	dispatched int
	statuses   []busbridge.DispatchStatus
}

// NewConnection constructs an idle fake connection.
func NewConnection() *Connection {
	return &Connection{dispatch: queue.New()}
}

// SetWatchFunctions implements busbridge.Connection, announcing
// InitialWatches through the freshly installed Add hook.
func (c *Connection) SetWatchFunctions(fns busbridge.WatchFunctions) error {
	c.mu.Lock()
	if err := c.WatchFunctionsErr; err != nil {
		c.mu.Unlock()
		return err
	}
	c.watchFns = fns
	initial := c.InitialWatches
	c.mu.Unlock()

	if fns.Add != nil {
		for _, w := range initial {
			if err := fns.Add(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetTimeoutFunctions implements busbridge.Connection.
func (c *Connection) SetTimeoutFunctions(fns busbridge.TimeoutFunctions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.TimeoutFunctionsErr; err != nil {
		return err
	}
	c.timeoutFns = fns
	return nil
}

// SetDispatchStatusHandler implements busbridge.Connection.
func (c *Connection) SetDispatchStatusHandler(fn func(busbridge.DispatchStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusFn = fn
}

// DispatchStatus implements busbridge.Connection.
func (c *Connection) DispatchStatus() busbridge.DispatchStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dispatch.Length() > 0 {
		return busbridge.DispatchDataRemains
	}
	return busbridge.DispatchComplete
}

// Dispatch implements busbridge.Connection, draining one queued work
// item.
func (c *Connection) Dispatch() busbridge.DispatchStatus {
	c.mu.Lock()
	var work func()
	if c.dispatch.Length() > 0 {
		work, _ = c.dispatch.Remove().(func())
		c.dispatched++
	}
	c.mu.Unlock()

	if work != nil {
		work()
	}
	return c.DispatchStatus()
}

// QueueWork enqueues a dispatch work item. fn may be nil.
func (c *Connection) QueueWork(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch.Add(fn)
}

// Dispatched returns how many work items Dispatch has drained.
func (c *Connection) Dispatched() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatched
}

// Hooks returns the currently installed hook sets, for driving the
// bridge exactly as the bus library would.
func (c *Connection) Hooks() (busbridge.WatchFunctions, busbridge.TimeoutFunctions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.watchFns, c.timeoutFns
}

// NotifyStatus invokes the installed dispatch-status handler, if any.
func (c *Connection) NotifyStatus(status busbridge.DispatchStatus) {
	c.mu.Lock()
	fn := c.statusFn
	c.statuses = append(c.statuses, status)
	c.mu.Unlock()
	if fn != nil {
		fn(status)
	}
}

// Listener is a scriptable busbridge.Listener.
type Listener struct {
	mu sync.Mutex

	watchFns   busbridge.WatchFunctions
	timeoutFns busbridge.TimeoutFunctions
	newConn    func(busbridge.Connection)

	// WatchFunctionsErr, when non-nil, is returned by SetWatchFunctions.
	WatchFunctionsErr error
	// TimeoutFunctionsErr, when non-nil, is returned by
	// SetTimeoutFunctions.
	TimeoutFunctionsErr error
}

// NewListener constructs an idle fake listener.
func NewListener() *Listener {
	return &Listener{}
}

// SetWatchFunctions implements busbridge.Listener.
func (l *Listener) SetWatchFunctions(fns busbridge.WatchFunctions) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.WatchFunctionsErr; err != nil {
		return err
	}
	l.watchFns = fns
	return nil
}

// SetTimeoutFunctions implements busbridge.Listener.
func (l *Listener) SetTimeoutFunctions(fns busbridge.TimeoutFunctions) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.TimeoutFunctionsErr; err != nil {
		return err
	}
	l.timeoutFns = fns
	return nil
}

// SetNewConnectionHandler implements busbridge.Listener.
func (l *Listener) SetNewConnectionHandler(fn func(busbridge.Connection)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.newConn = fn
}

// Hooks returns the currently installed hook sets.
func (l *Listener) Hooks() (busbridge.WatchFunctions, busbridge.TimeoutFunctions) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.watchFns, l.timeoutFns
}

// Accept models the bus library accepting a peer, invoking the installed
// new-connection handler. Reports whether a handler was installed.
func (l *Listener) Accept(conn busbridge.Connection) bool {
	l.mu.Lock()
	fn := l.newConn
	l.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(conn)
	return true
}
