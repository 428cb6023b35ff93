package phase

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockBoundaryFiresExactlyOnce(t *testing.T) {
	anchor := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClockAt(anchor)

	var ticks []int
	var boundaries int
	tl := Timeline{Anchor: anchor, PhaseOne: 2 * time.Second}
	c := NewClock(tl, One,
		WithClock(fc),
		OnTick(func(s int) { ticks = append(ticks, s) }),
		OnBoundary(func() { boundaries++ }),
	)

	c.tick()
	assert.Equal(t, []int{2}, ticks)
	assert.Zero(t, boundaries)

	fc.Advance(time.Second)
	c.tick()
	assert.Equal(t, []int{2, 1}, ticks)
	assert.Zero(t, boundaries)

	fc.Advance(time.Second)
	c.tick()
	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.Equal(t, 1, boundaries)
	assert.True(t, c.Fired())

	// Ticking past the boundary keeps reporting zero but must not re-fire.
	fc.Advance(time.Second)
	c.tick()
	fc.Advance(time.Second)
	c.tick()
	assert.Equal(t, []int{2, 1, 0, 0, 0}, ticks)
	assert.Equal(t, 1, boundaries)
}

func TestClockZeroDurationFiresOnFirstTick(t *testing.T) {
	anchor := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClockAt(anchor)

	var boundaries int
	tl := Timeline{Anchor: anchor}
	c := NewClock(tl, One, WithClock(fc), OnBoundary(func() { boundaries++ }))

	c.tick()
	assert.Equal(t, 1, boundaries)
}

func TestClockDeadlineLongPastFiresImmediately(t *testing.T) {
	anchor := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClockAt(anchor.Add(3 * time.Hour))

	var boundaries int
	tl := Timeline{Anchor: anchor, PhaseOne: 10 * time.Minute, PhaseTwo: 15 * time.Minute}
	c := NewClock(tl, Two, WithClock(fc), OnBoundary(func() { boundaries++ }))

	c.tick()
	assert.Equal(t, 1, boundaries)
}

func TestClockNotStartedNeverFires(t *testing.T) {
	anchor := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClockAt(anchor.Add(-time.Minute))

	var ticks, boundaries int
	tl := Timeline{Anchor: anchor, PhaseOne: 10 * time.Minute}
	c := NewClock(tl, One,
		WithClock(fc),
		OnTick(func(int) { ticks++ }),
		OnBoundary(func() { boundaries++ }),
	)

	c.tick()
	c.tick()
	assert.Zero(t, ticks)
	assert.Zero(t, boundaries)
	assert.False(t, c.Fired())
}

func TestSeededClockFirstTickReportsSeed(t *testing.T) {
	fc := clockwork.NewFakeClock()

	var ticks []int
	c := NewSeededClock(42, WithClock(fc), OnTick(func(s int) { ticks = append(ticks, s) }))

	c.tick()
	require.Equal(t, []int{42}, ticks)

	fc.Advance(time.Second)
	c.tick()
	assert.Equal(t, []int{42, 41}, ticks)
}

func TestClockRunTicksAtCadence(t *testing.T) {
	fc := clockwork.NewFakeClock()

	ticks := make(chan int, 16)
	boundaries := make(chan struct{}, 16)
	c := NewSeededClock(3,
		WithClock(fc),
		OnTick(func(s int) { ticks <- s }),
		OnBoundary(func() { boundaries <- struct{}{} }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()

	// The first sample is taken without waiting for a full interval.
	assert.Equal(t, 3, recvTick(t, ticks))

	fc.BlockUntil(1)
	for _, want := range []int{2, 1, 0} {
		fc.Advance(time.Second)
		assert.Equal(t, want, recvTick(t, ticks))
	}

	select {
	case <-boundaries:
	case <-time.After(2 * time.Second):
		t.Fatal("boundary never fired")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func recvTick(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
		return 0
	}
}
