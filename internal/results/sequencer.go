package results

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/neorya/arena/clients/arena"
)

// ResultsAPI is the slice of the platform client the sequencer drives.
type ResultsAPI interface {
	TriggerScoreComputation(ctx context.Context, gameID int) error
	TriggerBadgeEvaluation(ctx context.Context, gameID int) error
	ResolvePersonalResult(ctx context.Context, participantID, gameID int) (arena.PersonalResult, error)
}

// Navigator receives the resolved solution ID once finalization completes.
// The agent routes the participant to their results view through it.
type Navigator interface {
	GoToResults(ctx context.Context, solutionID int)
}

// step is one finalization action. Best-effort steps log and continue on
// failure; a required step aborts the sequence.
type step struct {
	name     string
	required bool
	run      func(ctx context.Context) error
}

// Sequencer runs the end-of-session finalization exactly once per session,
// no matter how many callers race into it: trigger score computation, trigger
// badge evaluation, resolve the participant's result, then navigate. Score and
// badge triggers are idempotent server-side and best-effort here; resolving
// the personal result is required because navigation needs the solution ID.
type Sequencer struct {
	api           ResultsAPI
	nav           Navigator
	participantID int
	gameID        int

	once sync.Once
	done chan struct{}
	err  error
}

func NewSequencer(api ResultsAPI, nav Navigator, participantID, gameID int) *Sequencer {
	return &Sequencer{
		api:           api,
		nav:           nav,
		participantID: participantID,
		gameID:        gameID,
		done:          make(chan struct{}),
	}
}

// Finalize runs the sequence. Concurrent and repeated calls share a single
// execution: the first caller runs it, the rest block until it finishes and
// observe the same error.
func (s *Sequencer) Finalize(ctx context.Context) error {
	s.once.Do(func() {
		defer close(s.done)
		s.err = s.run(ctx)
	})
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sequencer) run(ctx context.Context) error {
	steps := []step{
		{name: "compute scores", run: func(ctx context.Context) error {
			return s.api.TriggerScoreComputation(ctx, s.gameID)
		}},
		{name: "evaluate badges", run: func(ctx context.Context) error {
			return s.api.TriggerBadgeEvaluation(ctx, s.gameID)
		}},
		{name: "resolve personal result", required: true, run: func(ctx context.Context) error {
			res, err := s.api.ResolvePersonalResult(ctx, s.participantID, s.gameID)
			if err != nil {
				return err
			}
			s.nav.GoToResults(ctx, res.SolutionID)
			return nil
		}},
	}

	for _, st := range steps {
		if err := st.run(ctx); err != nil {
			if st.required {
				return fmt.Errorf("finalize session %d: %s: %w", s.gameID, st.name, err)
			}
			log.Warn().Err(err).
				Int("game_id", s.gameID).
				Str("step", st.name).
				Msg("finalization step failed, continuing")
		}
	}

	log.Info().Int("game_id", s.gameID).Msg("session finalized")
	return nil
}
