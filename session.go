package busbridge

// Session ties one logical bus endpoint (a connection or a listening
// endpoint) to its bridge. It is the hook installation target handed to
// the bus library, and the owner of the endpoint-scoped close state:
// whether hangup was observed, how many timers remain outstanding, and
// whether the closing notification has fired.
type Session struct {
	bridge   *Bridge
	conn     Connection // nil for listening endpoints
	listener Listener   // nil for connections
	closing  func(*Session)

	// Guarded by the bridge's partition lock.
	hup    bool // sticky once set
	timers int  // outstanding timer entries for this session
	closed bool // closing notification fired
}

// SetupConnection installs the watch, timeout, and dispatch-status hooks
// for an outbound or accepted bus connection, and records the closing
// callback invoked exactly once when the connection's last shadow record
// is torn down. closing may be nil.
//
// On failure the bus library's own error is propagated (wrapped in
// [ErrSetupFailed]) and every hook installed so far is removed, along with
// any watches or timeouts the bus library announced during installation:
// no partial state remains registered.
func (b *Bridge) SetupConnection(conn Connection, closing func(*Session)) (*Session, error) {
	if conn == nil {
		return nil, ErrNilEndpoint
	}

	s := &Session{
		bridge:  b,
		conn:    conn,
		closing: closing,
	}

	if err := conn.SetWatchFunctions(s.watchFunctions()); err != nil {
		err = WrapError(ErrSetupFailed, err)
		b.log().Err().
			Err(err).
			Log(`busbridge: set watch functions failed`)
		return nil, err
	}

	if err := conn.SetTimeoutFunctions(s.timeoutFunctions()); err != nil {
		err = WrapError(ErrSetupFailed, err)
		b.log().Err().
			Err(err).
			Log(`busbridge: set timeout functions failed`)
		_ = conn.SetWatchFunctions(WatchFunctions{})
		b.teardownSession(s)
		return nil, err
	}

	conn.SetDispatchStatusHandler(s.dispatchStatusChanged)

	return s, nil
}

// SetupListener installs the watch and timeout hooks for a bus listening
// endpoint, and registers newConn as the callback the bus library invokes
// with each accepted peer. Listening endpoints have no closing callback
// and no dispatch queue; their shadow records are destroyed as soon as
// the watch set empties.
//
// The returned Session is the listener handle. Failure semantics match
// SetupConnection.
func (b *Bridge) SetupListener(listener Listener, newConn func(Connection)) (*Session, error) {
	if listener == nil {
		return nil, ErrNilEndpoint
	}

	s := &Session{
		bridge:   b,
		listener: listener,
	}

	listener.SetNewConnectionHandler(newConn)

	if err := listener.SetWatchFunctions(s.watchFunctions()); err != nil {
		err = WrapError(ErrSetupFailed, err)
		b.log().Err().
			Err(err).
			Log(`busbridge: set watch functions failed`)
		listener.SetNewConnectionHandler(nil)
		return nil, err
	}

	if err := listener.SetTimeoutFunctions(s.timeoutFunctions()); err != nil {
		err = WrapError(ErrSetupFailed, err)
		b.log().Err().
			Err(err).
			Log(`busbridge: set timeout functions failed`)
		_ = listener.SetWatchFunctions(WatchFunctions{})
		listener.SetNewConnectionHandler(nil)
		b.teardownSession(s)
		return nil, err
	}

	return s, nil
}

func (s *Session) watchFunctions() WatchFunctions {
	return WatchFunctions{
		Add:    s.AddWatch,
		Remove: s.RemoveWatch,
		Toggle: s.ToggleWatch,
	}
}

func (s *Session) timeoutFunctions() TimeoutFunctions {
	return TimeoutFunctions{
		Add:    s.AddTimeout,
		Remove: s.RemoveTimeout,
		Toggle: s.ToggleTimeout,
	}
}

// dispatchStatusChanged observes dispatch queue transitions reported by
// the bus library.
func (s *Session) dispatchStatusChanged(status DispatchStatus) {
	s.bridge.log().Debug().
		Stringer(`status`, status).
		Log(`busbridge: dispatch status changed`)
}

// HangupSeen reports whether a hangup was observed on any of the
// session's descriptors. Sticky once set.
func (s *Session) HangupSeen() bool {
	s.bridge.mu.Lock()
	defer s.bridge.mu.Unlock()
	return s.hup
}

// PendingTimers returns the number of outstanding timer entries for this
// session.
func (s *Session) PendingTimers() int {
	s.bridge.mu.Lock()
	defer s.bridge.mu.Unlock()
	return s.timers
}

// Closed reports whether the closing notification has fired.
func (s *Session) Closed() bool {
	s.bridge.mu.Lock()
	defer s.bridge.mu.Unlock()
	return s.closed
}

// teardownSession destroys every shadow record and timer entry owned by
// s. Used to unwind a partially-completed setup; deregistration failures
// are logged and absorbed.
func (b *Bridge) teardownSession(s *Session) {
	b.mu.Lock()
	for _, rec := range b.store.byFD {
		if rec.session != s {
			continue
		}
		if err := b.store.destroyLocked(rec); err != nil {
			b.log().Warning().
				Err(err).
				Int(`fd`, rec.fd).
				Log(`busbridge: teardown deregistration failed`)
		}
	}
	kept := b.timers[:0]
	for _, e := range b.timers {
		if e.session == s {
			s.timers--
			continue
		}
		kept = append(kept, e)
	}
	b.timers = kept
	b.mu.Unlock()
}
