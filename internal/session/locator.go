package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/neorya/arena/clients/arena"
	"github.com/neorya/arena/internal/phase"
)

// Route is the view a participant should be attached to.
type Route string

const (
	RouteWaiting Route = "waiting"
	RouteCoding  Route = "coding"
	RouteReview  Route = "review"
	RouteResults Route = "results"
)

// Descriptor is the answer to "where does this participant belong right
// now". It is reconstructed from the server on every application entry and
// never persisted.
type Descriptor struct {
	Active    bool
	GameID    int
	Phase     phase.Phase
	Remaining time.Duration
}

// Route maps the descriptor's phase to a view.
func (d Descriptor) Route() (Route, error) {
	switch d.Phase {
	case phase.Lobby:
		return RouteWaiting, nil
	case phase.One:
		return RouteCoding, nil
	case phase.Two:
		return RouteReview, nil
	case phase.Ended:
		return RouteResults, nil
	}
	return "", fmt.Errorf("no route for phase %q", d.Phase)
}

// StatusAPI is what the locator needs from the platform client.
type StatusAPI interface {
	GetActiveSession(ctx context.Context, participantID int) (arena.ActiveSession, error)
}

// Locator performs re-entry detection: called once on application entry, it
// decides whether the participant re-attaches mid-session or sees the normal
// entry points.
type Locator struct {
	api StatusAPI
}

func NewLocator(api StatusAPI) *Locator {
	return &Locator{api: api}
}

// Locate asks the platform for the participant's in-progress session. A
// session in the ended phase counts as inactive: there is nothing to
// re-attach to. An unknown phase label is surfaced as an error rather than
// guessed at.
func (l *Locator) Locate(ctx context.Context, participantID int) (Descriptor, error) {
	status, err := l.api.GetActiveSession(ctx, participantID)
	if err != nil {
		return Descriptor{}, fmt.Errorf("locate active session: %w", err)
	}
	if !status.HasActiveGame {
		return Descriptor{}, nil
	}

	p, err := phase.Parse(status.CurrentPhase)
	if err != nil {
		return Descriptor{}, fmt.Errorf("locate active session: %w", err)
	}
	if p == phase.Ended {
		return Descriptor{}, nil
	}

	log.Info().
		Int("game_id", status.GameID).
		Str("phase", string(p)).
		Int("remaining_seconds", status.RemainingSeconds).
		Msg("re-attaching to active session")

	return Descriptor{
		Active:    true,
		GameID:    status.GameID,
		Phase:     p,
		Remaining: time.Duration(status.RemainingSeconds) * time.Second,
	}, nil
}

// SeedClock builds a phase clock from the descriptor's remaining time, so the
// countdown is correct on its very first tick instead of restarting from the
// full phase duration.
func (l *Locator) SeedClock(d Descriptor, opts ...phase.ClockOption) *phase.Clock {
	return phase.NewSeededClock(int(d.Remaining/time.Second), opts...)
}
