package busbridge

import "time"

// timerEntry is one outstanding delayed callback. Entries have no
// associated descriptor; they exist because the bus library also wants
// delayed callbacks, and the host loop only times out descriptors.
type timerEntry struct {
	fireAt  time.Time
	timeout Timeout
	session *Session
}

// AddTimeout schedules a bus timeout. Disabled timeouts are a no-op
// success: there is nothing to track until the bus library toggles them
// on. Intervals are floored to the partition's minimum (1s by default) to
// bound timer-check churn; callers relying on sub-second precision
// observe coarsened timing.
//
// Entries are inserted at the front of the registry. The registry is not
// sorted by deadline: firing is decided by comparing fireAt against the
// tick's sampled time, and order among simultaneously-due entries is
// unspecified.
func (s *Session) AddTimeout(t Timeout) error {
	if !t.Enabled() {
		return nil
	}

	b := s.bridge
	interval := t.Interval()
	if interval < b.minInterval {
		interval = b.minInterval
	}

	e := &timerEntry{
		fireAt:  b.now().Add(interval),
		timeout: t,
		session: s,
	}

	b.mu.Lock()
	b.timers = append(b.timers, nil)
	copy(b.timers[1:], b.timers)
	b.timers[0] = e
	s.timers++
	b.mu.Unlock()

	b.log().Debug().
		Dur(`interval`, t.Interval()).
		Dur(`effective`, interval).
		Log(`busbridge: timeout added`)

	return nil
}

// RemoveTimeout cancels the first entry matching t by reference identity.
// No-op if the timeout is not tracked (never fired-and-removed entries,
// nor timeouts added while disabled).
func (s *Session) RemoveTimeout(t Timeout) {
	b := s.bridge

	var found bool
	b.mu.Lock()
	for i, e := range b.timers {
		if e.timeout == t {
			b.timers = append(b.timers[:i], b.timers[i+1:]...)
			e.session.timers--
			found = true
			break
		}
	}
	b.mu.Unlock()

	if found {
		b.log().Debug().Log(`busbridge: timeout removed`)
	}
}

// ToggleTimeout dispatches to the add or remove path based on the
// timeout's current enabled state.
func (s *Session) ToggleTimeout(t Timeout) {
	if t.Enabled() {
		_ = s.AddTimeout(t)
	} else {
		s.RemoveTimeout(t)
	}
}

// Tick is the periodic timer check, driven by the host loop or any other
// periodic source on the partition's service goroutine. Every entry whose
// deadline is strictly in the past relative to now is removed and fired;
// fire handlers run with the partition lock released and may re-arm their
// timeout.
//
// A session whose outstanding timer count reaches zero may newly satisfy
// the close condition for a deferred record, so the condition is
// re-evaluated for the affected sessions' records.
func (b *Bridge) Tick(now time.Time) {
	b.mu.Lock()
	var due []*timerEntry
	kept := b.timers[:0]
	for _, e := range b.timers {
		if now.After(e.fireAt) {
			due = append(due, e)
			e.session.timers--
		} else {
			kept = append(kept, e)
		}
	}
	b.timers = kept
	b.mu.Unlock()

	if len(due) == 0 {
		return
	}

	for _, e := range due {
		b.log().Debug().Log(`busbridge: firing timer`)
		e.timeout.Handle()
	}

	b.mu.Lock()
	var closing []*Session
	for _, e := range due {
		for _, rec := range b.store.byFD {
			if rec.session != e.session {
				continue
			}
			if s := b.checkCloseLocked(rec); s != nil {
				closing = append(closing, s)
			}
		}
	}
	b.mu.Unlock()

	for _, s := range closing {
		notifyClosing(s)
	}
}
