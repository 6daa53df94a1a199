package busbridge

import (
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

// Bridge reconciles a bus library's watch/timeout registration model with
// one host event loop partition. It owns the partition's shadow records
// and timer registry, and is the target of the host loop's readiness and
// tick deliveries.
//
// One Bridge per host-loop partition (service goroutine). All state is
// guarded by a single coarse partition lock: the bus library is permitted
// to invoke watch and timeout hooks from contexts not serialized with the
// partition's own readiness delivery, and the lock makes record
// creation/destruction and mask updates atomic with respect to it.
//
// No Bridge operation blocks or suspends. Bus callbacks (watch handlers,
// dispatch cycles, timeout fires, closing notifications) are always
// invoked with the partition lock released, so they may re-enter the
// watch/timeout surface freely.
type Bridge struct {
	// Prevent copying
	_ [0]func()

	loop   HostLoop
	logger *logiface.Logger[logiface.Event]

	mu     sync.Mutex // partition lock
	store  recordStore
	timers []*timerEntry // front-inserted, unordered by deadline

	minInterval time.Duration
	now         func() time.Time
}

// New constructs a Bridge over the given host loop.
//
// If the host loop implements [TickSource], the bridge's periodic timer
// check is registered with it; otherwise the owner must arrange for
// [Bridge.Tick] to be called periodically.
func New(loop HostLoop, options ...Option) (*Bridge, error) {
	if loop == nil {
		return nil, ErrNilHostLoop
	}

	c := config{
		capacity:    DefaultDescriptorCapacity,
		minInterval: DefaultMinTimerInterval,
		now:         time.Now,
	}
	for _, o := range options {
		o(&c)
	}

	b := &Bridge{
		loop:        loop,
		logger:      c.logger,
		minInterval: c.minInterval,
		now:         c.now,
	}
	b.store.init(loop, c.capacity)

	if ts, ok := loop.(TickSource); ok {
		ts.OnTick(b.Tick)
	}

	return b, nil
}

// log is a nil-safe accessor for the configured logger. logiface builders
// tolerate nil receivers, so call sites chain unconditionally.
func (b *Bridge) log() *logiface.Logger[logiface.Event] {
	return b.logger
}
