package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/neorya/arena/clients/arena"
	"github.com/neorya/arena/internal/events"
	"github.com/neorya/arena/internal/phase"
	"github.com/neorya/arena/internal/results"
	"github.com/neorya/arena/internal/review"
	"github.com/neorya/arena/internal/session"
)

// StatusAPI is the session-status slice of the platform client.
type StatusAPI interface {
	GetActiveSession(ctx context.Context, participantID int) (arena.ActiveSession, error)
	GetSessionStatus(ctx context.Context, gameID int) (arena.SessionStatus, error)
	GetSessionTiming(ctx context.Context, gameID int) (arena.SessionTiming, error)
}

// EventSink receives session events for downstream fan-out. Publishing is
// best-effort from the agent's point of view: a sink failure never stalls the
// phase machine.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

// CodingWorkspace is the slice of the workspace the agent drives at the end
// of the coding phase.
type CodingWorkspace interface {
	Open(ctx context.Context) error
	Submitted() bool
	Submit(ctx context.Context) (arena.SubmittedSolution, error)
}

// Deps bundles everything the agent needs. WorkspaceFor builds the coding
// workspace for the session the agent locates at runtime; when nil the coding
// phase is clock-only.
type Deps struct {
	Status       StatusAPI
	Reviews      review.API
	Results      results.ResultsAPI
	Sink         EventSink
	WorkspaceFor func(gameID int) CodingWorkspace

	Clock        clockwork.Clock
	PollInterval time.Duration
}

// Agent walks one participant through a session's fixed timeline: wait for a
// session, wait out the lobby, run the coding and review phases against
// recomputed deadlines, then finalize. All phase transitions are driven by
// the server's anchor timestamp, never by locally accumulated time.
type Agent struct {
	deps          Deps
	locator       *session.Locator
	participantID int

	mu      sync.Mutex
	reviews *review.Manager
}

func New(deps Deps, participantID int) *Agent {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.PollInterval <= 0 {
		deps.PollInterval = 5 * time.Second
	}
	return &Agent{
		deps:          deps,
		locator:       session.NewLocator(deps.Status),
		participantID: participantID,
	}
}

// Reviews returns the review manager for the session in progress, or nil
// outside the review phase. Vote submissions from the serving layer go
// through it.
func (a *Agent) Reviews() *review.Manager {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reviews
}

// Run drives one session from wherever the participant currently stands to
// the results view. It returns nil once finalization completes, ctx.Err() on
// cancellation, or a terminal error.
func (a *Agent) Run(ctx context.Context) error {
	d, err := a.waitForSession(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("game_id", d.GameID).
		Str("phase", string(d.Phase)).
		Msg("session located")

	if d.Phase == phase.Ended {
		return a.finalize(ctx, d.GameID)
	}

	if d.Phase == phase.Lobby {
		if err := a.waitForStart(ctx, d.GameID); err != nil {
			return err
		}
	}

	tl, err := a.loadTimeline(ctx, d.GameID)
	if err != nil {
		return err
	}

	current, err := tl.At(a.deps.Clock.Now())
	if err != nil {
		// The anchor is set but still ahead of local now; treat it as the
		// start of the coding phase.
		current = phase.One
	}

	if current == phase.One {
		if err := a.runCodingPhase(ctx, d.GameID, tl); err != nil {
			return err
		}
		current = phase.Two
	}

	if current == phase.Two {
		if err := a.runReviewPhase(ctx, d.GameID, tl); err != nil {
			return err
		}
	}

	return a.finalize(ctx, d.GameID)
}

// waitForSession polls until the participant has an in-progress session. A
// session already past the review phase still counts: the descriptor from the
// locator excludes it, so probe the raw status for the finalize-only path.
func (a *Agent) waitForSession(ctx context.Context) (session.Descriptor, error) {
	var d session.Descriptor

	poller := session.NewPoller("active-session", a.deps.PollInterval, session.WithPollClock(a.deps.Clock))
	err := poller.Run(ctx, func(ctx context.Context) (bool, error) {
		found, err := a.locator.Locate(ctx, a.participantID)
		if err != nil {
			return false, err
		}
		if found.Active {
			d = found
			return true, nil
		}
		status, err := a.deps.Status.GetActiveSession(ctx, a.participantID)
		if err != nil {
			return false, err
		}
		if status.HasActiveGame && status.CurrentPhase == string(phase.Ended) {
			d = session.Descriptor{Active: true, GameID: status.GameID, Phase: phase.Ended}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return session.Descriptor{}, err
	}
	return d, nil
}

// waitForStart polls the lobby until the anchor timestamp appears, then
// announces the start.
func (a *Agent) waitForStart(ctx context.Context, gameID int) error {
	var startedAt time.Time

	poller := session.NewPoller("lobby-start", a.deps.PollInterval, session.WithPollClock(a.deps.Clock))
	err := poller.Run(ctx, func(ctx context.Context) (bool, error) {
		status, err := a.deps.Status.GetSessionStatus(ctx, gameID)
		if err != nil {
			return false, err
		}
		if !status.Started() {
			return false, nil
		}
		startedAt = *status.ActualStartDate
		return true, nil
	})
	if err != nil {
		return err
	}

	a.publish(ctx, events.NewEvent(events.TypeSessionStarted, gameID, events.SessionStarted{
		GameID:    gameID,
		StartedAt: startedAt,
	}))
	return nil
}

func (a *Agent) loadTimeline(ctx context.Context, gameID int) (phase.Timeline, error) {
	timing, err := a.deps.Status.GetSessionTiming(ctx, gameID)
	if err != nil {
		return phase.Timeline{}, fmt.Errorf("load session timing: %w", err)
	}
	if timing.ActualStartDate == nil {
		return phase.Timeline{}, fmt.Errorf("load session timing: %w", phase.ErrNotStarted)
	}
	return phase.NewTimeline(*timing.ActualStartDate, timing.DurationPhase1, timing.DurationPhase2)
}

// runCodingPhase watches the phase-one deadline. At the boundary the cached
// draft is auto-submitted if the participant never pressed submit, then the
// session moves to review.
func (a *Agent) runCodingPhase(ctx context.Context, gameID int, tl phase.Timeline) error {
	a.announcePhase(ctx, gameID, phase.One, tl, session.RouteCoding)

	var ws CodingWorkspace
	if a.deps.WorkspaceFor != nil {
		ws = a.deps.WorkspaceFor(gameID)
	}
	if ws != nil {
		if err := ws.Open(ctx); err != nil {
			log.Warn().Err(err).Int("game_id", gameID).Msg("workspace open failed")
		}
	}

	if err := a.watchDeadline(ctx, gameID, phase.One, tl); err != nil {
		return err
	}

	if ws != nil && !ws.Submitted() {
		if _, err := ws.Submit(ctx); err != nil {
			log.Warn().Err(err).Int("game_id", gameID).Msg("deadline auto-submit failed")
		}
	}

	a.publish(ctx, events.NewEvent(events.TypePhaseEnded, gameID, events.PhaseEnded{
		GameID: gameID,
		Phase:  string(phase.One),
	}))
	return nil
}

// runReviewPhase loads the review queue, watches the phase-two deadline, and
// closes the vote window the moment it is crossed.
func (a *Agent) runReviewPhase(ctx context.Context, gameID int, tl phase.Timeline) error {
	rm := review.NewManager(a.deps.Reviews, gameID, review.WithVoteObserver(func(assignmentID int, category review.Category) {
		a.publish(ctx, events.NewEvent(events.TypeVoteSubmitted, gameID, events.VoteSubmitted{
			GameID:       gameID,
			AssignmentID: assignmentID,
			Category:     string(category),
		}))
	}))
	a.mu.Lock()
	a.reviews = rm
	a.mu.Unlock()

	if _, err := rm.LoadAssignments(ctx); err != nil {
		if arena.IsTerminal(err) {
			return err
		}
		log.Warn().Err(err).Int("game_id", gameID).Msg("review assignments unavailable, continuing")
	}

	a.announcePhase(ctx, gameID, phase.Two, tl, session.RouteReview)

	if err := a.watchDeadline(ctx, gameID, phase.Two, tl); err != nil {
		return err
	}

	rm.Close()
	a.publish(ctx, events.NewEvent(events.TypePhaseEnded, gameID, events.PhaseEnded{
		GameID: gameID,
		Phase:  string(phase.Two),
	}))
	return nil
}

// finalize runs the end-of-session sequence and routes to results.
func (a *Agent) finalize(ctx context.Context, gameID int) error {
	seq := results.NewSequencer(a.deps.Results, &resultNavigator{agent: a, gameID: gameID}, a.participantID, gameID)
	if err := seq.Finalize(ctx); err != nil {
		return err
	}
	return nil
}

// watchDeadline runs a phase clock until the target's boundary fires or ctx
// is cancelled.
func (a *Agent) watchDeadline(ctx context.Context, gameID int, target phase.Phase, tl phase.Timeline) error {
	clockCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	boundary := make(chan struct{})
	clk := phase.NewClock(tl, target,
		phase.WithClock(a.deps.Clock),
		phase.OnTick(func(secondsLeft int) {
			a.publish(ctx, events.NewEvent(events.TypeCountdownTick, gameID, events.CountdownTick{
				GameID:    gameID,
				Phase:     string(target),
				Remaining: secondsLeft,
			}))
		}),
		phase.OnBoundary(func() {
			close(boundary)
		}),
	)

	done := make(chan error, 1)
	go func() {
		done <- clk.Run(clockCtx)
	}()

	select {
	case <-boundary:
		cancel()
		<-done
		return nil
	case <-ctx.Done():
		<-done
		return ctx.Err()
	}
}

func (a *Agent) announcePhase(ctx context.Context, gameID int, p phase.Phase, tl phase.Timeline, route session.Route) {
	a.publish(ctx, events.NewEvent(events.TypePhaseStarted, gameID, events.PhaseStarted{
		GameID:   gameID,
		Phase:    string(p),
		Deadline: tl.Deadline(p).UTC().Format(time.RFC3339),
	}))
	a.publish(ctx, events.NewEvent(events.TypeRouteChanged, gameID, events.RouteChanged{
		GameID: gameID,
		Route:  string(route),
	}))
}

func (a *Agent) publish(ctx context.Context, event events.Event) {
	if a.deps.Sink == nil {
		return
	}
	if err := a.deps.Sink.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().
			Err(err).
			Str("event_type", event.Type).
			Int("game_id", event.GameID).
			Msg("event publish failed")
	}
}

// resultNavigator translates the sequencer's navigation callback into events.
type resultNavigator struct {
	agent  *Agent
	gameID int
}

func (n *resultNavigator) GoToResults(ctx context.Context, solutionID int) {
	n.agent.publish(ctx, events.NewEvent(events.TypeResultReady, n.gameID, events.ResultReady{
		GameID:     n.gameID,
		SolutionID: solutionID,
	}))
	n.agent.publish(ctx, events.NewEvent(events.TypeRouteChanged, n.gameID, events.RouteChanged{
		GameID: n.gameID,
		Route:  string(session.RouteResults),
	}))
}
