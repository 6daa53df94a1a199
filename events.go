package busbridge

// PollEvents represents the host loop's unified per-descriptor readiness
// mask. The host loop watches at descriptor granularity, so a single
// PollEvents value carries the combined interest (or readiness) of every
// live watch on that descriptor.
type PollEvents uint32

const (
	// PollReadable indicates the descriptor is (or should be watched for
	// becoming) ready for reading.
	PollReadable PollEvents = 1 << iota
	// PollWritable indicates the descriptor is (or should be watched for
	// becoming) ready for writing.
	PollWritable
	// PollHangup indicates the peer closed its end. Only meaningful in
	// readiness deliveries; it is never part of an interest mask.
	PollHangup
)

// String returns a compact representation such as "r|w|hup".
func (e PollEvents) String() string {
	if e == 0 {
		return "none"
	}
	var buf []byte
	if e&PollReadable != 0 {
		buf = append(buf, 'r')
	}
	if e&PollWritable != 0 {
		if len(buf) > 0 {
			buf = append(buf, '|')
		}
		buf = append(buf, 'w')
	}
	if e&PollHangup != 0 {
		if len(buf) > 0 {
			buf = append(buf, '|')
		}
		buf = append(buf, "hup"...)
	}
	return string(buf)
}

// WatchFlags represents the bus library's per-watch directional flags. A
// watch object carries exactly one direction in practice, but the type is a
// bitmask because readiness deliveries may combine both.
type WatchFlags uint32

const (
	// WatchReadable is read interest or read readiness.
	WatchReadable WatchFlags = 1 << iota
	// WatchWritable is write interest or write readiness.
	WatchWritable
)

// String returns a compact representation such as "readable|writable".
func (f WatchFlags) String() string {
	switch f & (WatchReadable | WatchWritable) {
	case WatchReadable:
		return "readable"
	case WatchWritable:
		return "writable"
	case WatchReadable | WatchWritable:
		return "readable|writable"
	default:
		return "none"
	}
}

// PollEvents converts watch flags to the equivalent host interest bits.
func (f WatchFlags) PollEvents() PollEvents {
	var e PollEvents
	if f&WatchReadable != 0 {
		e |= PollReadable
	}
	if f&WatchWritable != 0 {
		e |= PollWritable
	}
	return e
}

// WatchFlags converts host readiness bits to the equivalent watch flags.
// PollHangup has no per-watch representation and is dropped; it is handled
// by the dispatcher's close condition instead.
func (e PollEvents) WatchFlags() WatchFlags {
	var f WatchFlags
	if e&PollReadable != 0 {
		f |= WatchReadable
	}
	if e&PollWritable != 0 {
		f |= WatchWritable
	}
	return f
}

// DispatchStatus is the bus library's report on its internal dispatch
// queue, after a dispatch cycle or in response to a status query.
type DispatchStatus int32

const (
	// DispatchComplete indicates no queued dispatch work remains.
	DispatchComplete DispatchStatus = iota
	// DispatchDataRemains indicates the bus library has more queued work
	// and must be dispatched again before the connection may be
	// considered idle.
	DispatchDataRemains
)

// String returns the status name.
func (s DispatchStatus) String() string {
	switch s {
	case DispatchComplete:
		return "complete"
	case DispatchDataRemains:
		return "data-remains"
	default:
		return "unknown"
	}
}
