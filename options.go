package busbridge

import (
	"time"

	"github.com/joeycumines/logiface"
)

const (
	// DefaultDescriptorCapacity bounds the descriptor values accepted per
	// partition. Mirrors the usual per-thread fd table sizing; override
	// with WithDescriptorCapacity to match the host loop's actual limit.
	DefaultDescriptorCapacity = 65536

	// DefaultMinTimerInterval is the floor applied to bus timeout
	// intervals, bounding timer-check churn. Callers relying on
	// sub-second precision observe coarsened timing.
	DefaultMinTimerInterval = time.Second
)

// Option configures a Bridge.
type Option func(*config)

type config struct {
	logger      *logiface.Logger[logiface.Event]
	capacity    int
	minInterval time.Duration
	now         func() time.Time
}

// WithLogger configures structured logging. A nil logger (the default)
// disables all logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDescriptorCapacity overrides the maximum descriptor value (exclusive)
// accepted by this partition. Values <= 0 are ignored.
func WithDescriptorCapacity(capacity int) Option {
	return func(c *config) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

// WithMinTimerInterval overrides the floor applied to bus timeout
// intervals. Values <= 0 are ignored.
func WithMinTimerInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.minInterval = d
		}
	}
}
