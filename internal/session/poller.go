package session

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/neorya/arena/clients/arena"
	"github.com/neorya/arena/internal/phase"
)

// Query is one polling probe. It returns done=true when the condition the
// caller is waiting for has been observed (session started, session found).
type Query func(ctx context.Context) (done bool, err error)

// Poller re-issues a query at a fixed interval until it reports done, the
// context is cancelled, or the query fails terminally. The query runs
// synchronously inside the loop, so at most one probe is ever in flight; if a
// probe outlasts the interval the next tick simply waits its turn.
type Poller struct {
	clock    clockwork.Clock
	interval time.Duration
	name     string
}

type PollerOption func(*Poller)

// WithPollClock swaps the time source. Tests pass a clockwork.FakeClock.
func WithPollClock(clk clockwork.Clock) PollerOption {
	return func(p *Poller) {
		p.clock = clk
	}
}

// NewPoller builds a poller with the given cadence. The name only appears in
// logs.
func NewPoller(name string, interval time.Duration, opts ...PollerOption) *Poller {
	p := &Poller{
		clock:    clockwork.NewRealClock(),
		interval: interval,
		name:     name,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until the query reports done. Transient errors are logged and
// retried on the next tick; terminal errors (auth, not-found) stop the poller
// and are returned. Cancellation via ctx stops the poller with ctx.Err().
func (p *Poller) Run(ctx context.Context, query Query) error {
	if done, err := p.probe(ctx, query); done || err != nil {
		return err
	}

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("poller", p.name).Msg("poller cancelled")
			return ctx.Err()
		case <-ticker.Chan():
			if done, err := p.probe(ctx, query); done || err != nil {
				return err
			}
		}
	}
}

func (p *Poller) probe(ctx context.Context, query Query) (bool, error) {
	done, err := query(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		// Unknown phase labels are configuration errors, not outages; no
		// number of retries will fix them.
		if arena.IsTerminal(err) || errors.Is(err, phase.ErrUnknownPhase) {
			log.Error().Err(err).Str("poller", p.name).Msg("poll failed terminally")
			return false, err
		}
		// Transient: the fixed interval already rate-limits retries.
		log.Warn().Err(err).Str("poller", p.name).Msg("poll failed, retrying on next tick")
		return false, nil
	}
	if done {
		log.Debug().Str("poller", p.name).Msg("poll condition met")
	}
	return done, nil
}
