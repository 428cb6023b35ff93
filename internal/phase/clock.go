package phase

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// TickFunc receives the whole seconds left until the watched deadline.
type TickFunc func(secondsLeft int)

// BoundaryFunc is invoked exactly once per Clock instance, when the watched
// deadline is crossed.
type BoundaryFunc func()

// Clock samples a deadline at a fixed cadence and fires a single-shot
// boundary notification when the remaining time reaches zero. Remaining time
// is recomputed from the source on every tick, never decremented, so the
// countdown stays correct across suspend/resume.
type Clock struct {
	clock     clockwork.Clock
	interval  time.Duration
	remaining func(now time.Time) (time.Duration, error)

	onTick     TickFunc
	onBoundary BoundaryFunc

	mu    sync.Mutex
	fired bool
}

type ClockOption func(*Clock)

// WithClock swaps the time source. Tests pass a clockwork.FakeClock.
func WithClock(clk clockwork.Clock) ClockOption {
	return func(c *Clock) {
		c.clock = clk
	}
}

// WithInterval overrides the default 1s sampling cadence.
func WithInterval(d time.Duration) ClockOption {
	return func(c *Clock) {
		c.interval = d
	}
}

// OnTick registers the per-sample callback.
func OnTick(fn TickFunc) ClockOption {
	return func(c *Clock) {
		c.onTick = fn
	}
}

// OnBoundary registers the single-shot boundary callback.
func OnBoundary(fn BoundaryFunc) ClockOption {
	return func(c *Clock) {
		c.onBoundary = fn
	}
}

// NewClock builds a Clock watching the deadline of target on the given
// timeline.
func NewClock(tl Timeline, target Phase, opts ...ClockOption) *Clock {
	c := newClock(opts)
	c.remaining = func(now time.Time) (time.Duration, error) {
		return tl.Remaining(now, target)
	}
	return c
}

// NewSeededClock builds a Clock from a remaining-seconds answer, e.g. the
// active-session locator's. The deadline is pinned at construction so the
// very first tick reports the seeded value, then counts down from there.
func NewSeededClock(seconds int, opts ...ClockOption) *Clock {
	c := newClock(opts)
	deadline := c.clock.Now().Add(time.Duration(seconds) * time.Second)
	c.remaining = func(now time.Time) (time.Duration, error) {
		left := deadline.Sub(now)
		if left < 0 {
			left = 0
		}
		return left, nil
	}
	return c
}

func newClock(opts []ClockOption) *Clock {
	c := &Clock{
		clock:    clockwork.NewRealClock(),
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run ticks until ctx is cancelled. The first sample is taken immediately so
// a freshly seeded countdown renders without waiting a full interval. Ticks
// after the boundary keep reporting zero; the boundary callback itself fires
// only once.
func (c *Clock) Run(ctx context.Context) error {
	c.tick()

	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			c.tick()
		}
	}
}

// Fired reports whether the boundary notification has been delivered.
func (c *Clock) Fired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

func (c *Clock) tick() {
	now := c.clock.Now()
	left, err := c.remaining(now)
	if err != nil {
		// Not started yet: no countdown value exists and no boundary may
		// fire. The caller renders a placeholder.
		log.Debug().Err(err).Msg("phase clock tick skipped")
		return
	}

	secs := int(left / time.Second)
	if left%time.Second != 0 {
		secs++
	}

	if c.onTick != nil {
		c.onTick(secs)
	}
	if secs == 0 {
		c.fireBoundary()
	}
}

func (c *Clock) fireBoundary() {
	c.mu.Lock()
	if c.fired {
		c.mu.Unlock()
		return
	}
	c.fired = true
	c.mu.Unlock()

	if c.onBoundary != nil {
		c.onBoundary()
	}
}
