package busbridge

// AddWatch reconciles a watch-add event from the bus library: the
// descriptor's shadow record is looked up or created, the watch reference
// is slotted (idempotently), and the recomputed union mask is pushed to
// the host loop.
//
// Safe to call from any goroutine; the partition lock makes the record
// mutation atomic with respect to concurrent readiness delivery.
func (s *Session) AddWatch(w Watch) error {
	b := s.bridge
	fd := w.Descriptor()

	b.mu.Lock()
	rec, err := b.store.lookupOrCreateLocked(s, fd, true)
	if err == nil && rec == nil {
		// Unreachable with createOK, but never dereference on a broken
		// host loop contract.
		err = ErrRegistrationFailed
	}
	if err != nil {
		b.mu.Unlock()
		b.log().Err().
			Err(err).
			Int(`fd`, fd).
			Log(`busbridge: unable to shadow descriptor`)
		return err
	}

	rec.insert(w)
	events := rec.interest()
	b.loop.SetInterest(rec.reg, events)
	b.mu.Unlock()

	b.log().Debug().
		Int(`fd`, fd).
		Stringer(`events`, events).
		Log(`busbridge: watch added`)

	return nil
}

// RemoveWatch reconciles a watch-remove event. Removal never creates a
// record: an unknown descriptor means the record was already torn down,
// and the call is a safe no-op. Clearing the last slot triggers the close
// condition, which may destroy the record and fire the session's closing
// notification.
func (s *Session) RemoveWatch(w Watch) {
	b := s.bridge
	fd := w.Descriptor()

	b.mu.Lock()
	rec, err := b.store.lookupOrCreateLocked(s, fd, false)
	if err != nil || rec == nil {
		b.mu.Unlock()
		b.log().Debug().
			Int(`fd`, fd).
			Log(`busbridge: watch removed for untracked descriptor`)
		return
	}

	rec.clear(w)
	events := rec.interest()
	b.loop.SetInterest(rec.reg, events)

	var closing *Session
	if rec.empty() {
		closing = b.checkCloseLocked(rec)
	}
	b.mu.Unlock()

	b.log().Debug().
		Int(`fd`, fd).
		Stringer(`events`, events).
		Log(`busbridge: watch removed`)

	notifyClosing(closing)
}

// ToggleWatch dispatches to the add or remove path based on the watch's
// current enabled state. Convenience composition, not separate logic.
func (s *Session) ToggleWatch(w Watch) {
	if w.Enabled() {
		_ = s.AddWatch(w)
	} else {
		s.RemoveWatch(w)
	}
}

// checkCloseLocked evaluates the close condition for a record whose watch
// set may have emptied, destroying it when the condition holds. Returns
// the session whose closing notification must be fired (with the lock
// released), or nil.
//
// Listener records are destroyed as soon as the watch set empties: with
// no connection there is no dispatch queue and no hangup to wait for.
// Connection records additionally require hangup observed, zero
// outstanding timers, and no queued dispatch work; until then destruction
// is deferred and retried on the next readiness, removal, or timer-fire
// event.
func (b *Bridge) checkCloseLocked(rec *shadowRecord) *Session {
	if b.store.byFD[rec.fd] != rec || !rec.empty() {
		return nil
	}

	s := rec.session

	if s.conn != nil {
		if !s.hup || s.timers > 0 {
			return nil
		}
		if s.conn.DispatchStatus() == DispatchDataRemains {
			return nil
		}
	}

	if err := b.store.destroyLocked(rec); err != nil {
		b.log().Warning().
			Err(err).
			Int(`fd`, rec.fd).
			Log(`busbridge: shadow record deregistration failed`)
	}
	b.log().Debug().
		Int(`fd`, rec.fd).
		Log(`busbridge: shadow record destroyed`)

	if s.conn == nil || s.closed {
		return nil
	}
	s.closed = true
	return s
}

// notifyClosing fires a session's closing callback, outside the partition
// lock. Exactly-once delivery is guaranteed by the closed flag set in
// checkCloseLocked.
func notifyClosing(s *Session) {
	if s == nil || s.closing == nil {
		return
	}
	s.closing(s)
}
