package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neorya/arena/clients/arena"
	"github.com/neorya/arena/internal/phase"
)

func TestPollerStopsWhenConditionMet(t *testing.T) {
	fc := clockwork.NewFakeClock()
	p := NewPoller("test", 2*time.Second, WithPollClock(fc))

	err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		return true, nil
	})
	assert.NoError(t, err)
}

func TestPollerRetriesTransientErrors(t *testing.T) {
	fc := clockwork.NewFakeClock()
	p := NewPoller("test", 2*time.Second, WithPollClock(fc))

	calls := make(chan int, 16)
	n := 0
	query := func(ctx context.Context) (bool, error) {
		n++
		calls <- n
		if n < 3 {
			return false, errors.New("connection refused")
		}
		return true, nil
	}

	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(context.Background(), query) }()

	require.Equal(t, 1, recvCall(t, calls))
	fc.BlockUntil(1)

	fc.Advance(2 * time.Second)
	require.Equal(t, 2, recvCall(t, calls))

	fc.Advance(2 * time.Second)
	require.Equal(t, 3, recvCall(t, calls))

	assert.NoError(t, recvErr(t, errCh))
}

func TestPollerStopsOnTerminalError(t *testing.T) {
	fc := clockwork.NewFakeClock()
	p := NewPoller("test", 2*time.Second, WithPollClock(fc))

	terminal := &arena.APIError{Op: "GET /status", Status: http.StatusNotFound}
	err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		return false, terminal
	})

	var apiErr *arena.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestPollerStopsOnUnknownPhase(t *testing.T) {
	fc := clockwork.NewFakeClock()
	p := NewPoller("test", 2*time.Second, WithPollClock(fc))

	// A bad phase label is a configuration error; retrying cannot heal it,
	// so the poller must surface it on the first probe.
	api := &stubStatusAPI{
		status: arena.ActiveSession{HasActiveGame: true, GameID: 7, CurrentPhase: "halftime"},
	}
	locator := NewLocator(api)

	calls := 0
	err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		d, err := locator.Locate(ctx, 3)
		if err != nil {
			return false, err
		}
		return d.Active, nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, phase.ErrUnknownPhase)
	assert.Equal(t, 1, calls)
}

func TestPollerCancellationStopsQueries(t *testing.T) {
	fc := clockwork.NewFakeClock()
	p := NewPoller("test", 2*time.Second, WithPollClock(fc))

	calls := make(chan int, 16)
	n := 0
	query := func(ctx context.Context) (bool, error) {
		n++
		calls <- n
		return false, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx, query) }()

	require.Equal(t, 1, recvCall(t, calls))
	fc.BlockUntil(1)

	cancel()
	assert.ErrorIs(t, recvErr(t, errCh), context.Canceled)

	// No further query may be observed once Run has returned.
	fc.Advance(10 * time.Second)
	select {
	case c := <-calls:
		t.Fatalf("query %d observed after cancellation", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func recvCall(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for query call")
		return 0
	}
}

func recvErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for poller to return")
		return nil
	}
}
