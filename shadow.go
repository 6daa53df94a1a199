package busbridge

// watchSlotCount fixes the per-record watch capacity. The bridged model
// guarantees at most one read-interest and one write-interest watch per
// descriptor; this is a protocol invariant, not a tunable.
const watchSlotCount = 2

// shadowRecord is the derived per-descriptor bookkeeping object: the host
// loop's registration for one descriptor on behalf of the bus library.
// Created on first watch registration for an unknown descriptor, destroyed
// by the close condition (connection records) or when the watch set
// empties (listener records).
//
// The descriptor itself is not owned: the bus library gives no
// notification of close, and "no watches remain" is the only observable
// signal that it is going away.
type shadowRecord struct {
	session *Session
	reg     Registration
	fd      int
	watches [watchSlotCount]Watch
}

// interest recomputes the host poll mask as the union of directional
// flags across live watch slots. Pure function over the slots; the remove
// path's complement semantics (a flag is cleared only when no remaining
// slot requests it) fall out of pushing the recomputed union.
func (r *shadowRecord) interest() PollEvents {
	var e PollEvents
	for _, w := range r.watches {
		if w != nil {
			e |= w.Flags().PollEvents()
		}
	}
	return e
}

// insert records a watch reference in the first free slot. Idempotent:
// re-inserting a watch already present is a no-op, so repeated add events
// cannot leak slots.
func (r *shadowRecord) insert(w Watch) {
	for _, held := range r.watches {
		if held == w {
			return
		}
	}
	for i, held := range r.watches {
		if held == nil {
			r.watches[i] = w
			return
		}
	}
	// Both slots occupied by other watches. The two-direction invariant
	// was violated by the bus library; drop the extra watch and leave the
	// record consistent.
	r.session.bridge.log().Warning().
		Int(`fd`, r.fd).
		Log(`busbridge: more than two watches for descriptor, ignoring extra`)
}

// clear releases the slot holding w, matched by reference identity.
// Reports whether a slot was cleared.
func (r *shadowRecord) clear(w Watch) bool {
	for i, held := range r.watches {
		if held == w {
			r.watches[i] = nil
			return true
		}
	}
	return false
}

// empty reports whether no live watch slots remain.
func (r *shadowRecord) empty() bool {
	for _, held := range r.watches {
		if held != nil {
			return false
		}
	}
	return true
}

// recordStore owns every shadow record for one partition. Records are
// indexed both by descriptor and by host-loop registration handle, so
// readiness delivery resolves through the handle without assuming a freed
// record's address cannot be revisited.
//
// All methods require the partition lock.
type recordStore struct {
	loop     HostLoop
	byFD     map[int]*shadowRecord
	byReg    map[Registration]*shadowRecord
	capacity int
}

func (s *recordStore) init(loop HostLoop, capacity int) {
	s.loop = loop
	s.byFD = make(map[int]*shadowRecord)
	s.byReg = make(map[Registration]*shadowRecord)
	s.capacity = capacity
}

// lookupOrCreateLocked returns the existing record for fd, or, when
// createOK, allocates one and registers it with the host loop. Removal
// paths pass createOK=false and receive (nil, nil) for unknown
// descriptors: a missing record on removal means it was already torn
// down, never a reason to create one.
func (s *recordStore) lookupOrCreateLocked(sess *Session, fd int, createOK bool) (*shadowRecord, error) {
	if fd < 0 || fd >= s.capacity {
		return nil, ErrDescriptorOutOfRange
	}

	if rec := s.byFD[fd]; rec != nil {
		if rec.session != sess {
			return nil, ErrDescriptorConflict
		}
		return rec, nil
	}

	if !createOK {
		return nil, nil
	}

	rec := &shadowRecord{
		session: sess,
		fd:      fd,
	}

	reg, err := s.loop.Register(fd)
	if err != nil {
		// Nothing was indexed yet; the partially-built record is simply
		// discarded.
		return nil, WrapError(ErrRegistrationFailed, err)
	}
	rec.reg = reg

	s.byFD[fd] = rec
	s.byReg[reg] = rec

	return rec, nil
}

// destroyLocked deregisters the record from the host loop and releases
// it. The record is unindexed before the host loop is informed, so
// teardown is idempotent and a deregistration failure (already-removed
// race) leaves no inconsistent state; the error is returned for logging
// and is non-fatal to the caller's larger operation.
func (s *recordStore) destroyLocked(rec *shadowRecord) error {
	delete(s.byFD, rec.fd)
	delete(s.byReg, rec.reg)

	if err := s.loop.Deregister(rec.reg); err != nil {
		return WrapError(ErrDeregistrationFailed, err)
	}
	return nil
}

// byRegistrationLocked resolves a readiness delivery's handle to its
// record, or nil for stale handles.
func (s *recordStore) byRegistrationLocked(reg Registration) *shadowRecord {
	return s.byReg[reg]
}
