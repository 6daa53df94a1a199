package busbridge

// HandleReady is the host loop's readiness delivery. reg is the handle
// returned by the host loop's Register for the ready descriptor; events
// is the unified readiness mask.
//
// Readiness is translated back into per-watch directional flags and
// delivered to every occupied watch slot; a handler failure is logged and
// does not abort the sibling slot. For connection-owned descriptors the
// bus library's dispatch queue is then drained to exhaustion and the
// close condition evaluated, which may destroy the shadow record before
// this call returns. Listener descriptors skip the drain: accepting the
// peer happens inside the bus library's own watch handler.
//
// Stale handles (a record torn down between poll and delivery) are a safe
// no-op.
func (b *Bridge) HandleReady(reg Registration, events PollEvents) {
	b.mu.Lock()
	rec := b.store.byRegistrationLocked(reg)
	if rec == nil {
		b.mu.Unlock()
		b.log().Debug().
			Stringer(`events`, events).
			Log(`busbridge: readiness for stale registration`)
		return
	}

	s := rec.session
	if events&PollHangup != 0 {
		s.hup = true
	}
	fd := rec.fd
	watches := rec.watches // snapshot; handlers run unlocked
	b.mu.Unlock()

	flags := events.WatchFlags()

	for _, w := range watches {
		if w == nil {
			continue
		}
		if err := w.Handle(flags); err != nil {
			herr := &HandlerError{Err: err, Descriptor: fd, Flags: flags}
			b.log().Warning().
				Err(herr).
				Log(`busbridge: watch handler failed`)
		}
	}

	if s.conn == nil {
		// Listening endpoint: new peers arrive via the bus library's
		// new-connection callback, triggered from the watch handlers
		// above. Nothing further to drive here.
		b.log().Debug().
			Int(`fd`, fd).
			Stringer(`events`, events).
			Log(`busbridge: listener readiness`)
		return
	}

	// Bounded by the bus library's own "no work remaining" signal, not by
	// external blocking I/O.
	for s.conn.DispatchStatus() == DispatchDataRemains {
		s.conn.Dispatch()
	}
	s.dispatchStatusChanged(DispatchComplete)

	b.mu.Lock()
	var closing *Session
	// Re-resolve: a reentrant removal may have torn the record down while
	// the handlers ran.
	if rec := b.store.byFD[fd]; rec != nil && rec.session == s {
		closing = b.checkCloseLocked(rec)
	}
	b.mu.Unlock()

	notifyClosing(closing)
}
