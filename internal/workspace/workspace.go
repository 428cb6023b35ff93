package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/neorya/arena/clients/arena"
)

// ErrAlreadySubmitted means the workspace's solution was already accepted; a
// coding-phase workspace submits at most once.
var ErrAlreadySubmitted = errors.New("solution already submitted")

// PhaseOneAPI is the slice of the platform client the coding workspace uses.
type PhaseOneAPI interface {
	GetMatchDetails(ctx context.Context, gameID int) (arena.MatchDetails, error)
	ListPublicTests(ctx context.Context, participantID, gameID int) ([]arena.TestCase, error)
	AddParticipantTest(ctx context.Context, participantID, gameID int, testIn, testOut string) (arena.AddedTest, error)
	SubmitSolution(ctx context.Context, participantID, gameID int, code string) (arena.SubmittedSolution, error)
}

// Workspace is the participant's coding-phase state: the problem statement,
// the visible tests, and the current draft. Drafts persist through the store
// so a reconnect resumes where the participant left off.
type Workspace struct {
	api           PhaseOneAPI
	drafts        DraftStore
	participantID int
	gameID        int

	mu        sync.Mutex
	match     arena.MatchDetails
	tests     []arena.TestCase
	code      string
	submitted bool
}

func New(api PhaseOneAPI, drafts DraftStore, participantID, gameID int) *Workspace {
	return &Workspace{
		api:           api,
		drafts:        drafts,
		participantID: participantID,
		gameID:        gameID,
	}
}

// Open loads the match details, public tests and any saved draft. A missing
// draft is normal on first open; a draft-store outage degrades to an empty
// editor rather than failing the open.
func (w *Workspace) Open(ctx context.Context) error {
	match, err := w.api.GetMatchDetails(ctx, w.gameID)
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	tests, err := w.api.ListPublicTests(ctx, w.participantID, w.gameID)
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}

	code, err := w.drafts.Load(ctx, w.participantID, w.gameID)
	switch {
	case errors.Is(err, ErrNoDraft):
		code = ""
	case err != nil:
		log.Warn().Err(err).Int("game_id", w.gameID).Msg("draft unavailable, starting empty")
		code = ""
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.match = match
	w.tests = tests
	w.code = code

	log.Info().
		Int("game_id", w.gameID).
		Str("match", match.Title).
		Int("public_tests", len(tests)).
		Bool("draft_restored", code != "").
		Msg("workspace opened")
	return nil
}

// Match returns the problem statement.
func (w *Workspace) Match() arena.MatchDetails {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.match
}

// Tests returns the visible tests, public samples plus any the participant
// added this session.
func (w *Workspace) Tests() []arena.TestCase {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]arena.TestCase, len(w.tests))
	copy(out, w.tests)
	return out
}

// Code returns the current draft.
func (w *Workspace) Code() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.code
}

// SetCode updates the draft and persists it. Persistence is best-effort: a
// store failure keeps the in-memory draft and logs.
func (w *Workspace) SetCode(ctx context.Context, code string) {
	w.mu.Lock()
	w.code = code
	w.mu.Unlock()

	if err := w.drafts.Save(ctx, w.participantID, w.gameID, code); err != nil {
		log.Warn().Err(err).Int("game_id", w.gameID).Msg("draft save failed")
	}
}

// AddTest records a participant-authored test and appends it to the visible
// list on success.
func (w *Workspace) AddTest(ctx context.Context, testIn, testOut string) (arena.AddedTest, error) {
	added, err := w.api.AddParticipantTest(ctx, w.participantID, w.gameID, testIn, testOut)
	if err != nil {
		return arena.AddedTest{}, fmt.Errorf("add test: %w", err)
	}

	w.mu.Lock()
	w.tests = append(w.tests, arena.TestCase{
		TestID:  added.TestID,
		TestIn:  testIn,
		TestOut: testOut,
		Scope:   "student",
	})
	w.mu.Unlock()
	return added, nil
}

// Submit sends the current draft as the participant's solution and clears the
// persisted draft on success. At most one submission succeeds per workspace.
func (w *Workspace) Submit(ctx context.Context) (arena.SubmittedSolution, error) {
	w.mu.Lock()
	if w.submitted {
		w.mu.Unlock()
		return arena.SubmittedSolution{}, ErrAlreadySubmitted
	}
	code := w.code
	w.mu.Unlock()

	sol, err := w.api.SubmitSolution(ctx, w.participantID, w.gameID, code)
	if err != nil {
		return arena.SubmittedSolution{}, fmt.Errorf("submit solution: %w", err)
	}

	w.mu.Lock()
	w.submitted = true
	w.mu.Unlock()

	if err := w.drafts.Clear(ctx, w.participantID, w.gameID); err != nil {
		log.Warn().Err(err).Int("game_id", w.gameID).Msg("draft clear failed")
	}

	log.Info().
		Int("game_id", w.gameID).
		Int("solution_id", sol.SolutionID).
		Msg("solution submitted")
	return sol, nil
}

// Submitted reports whether a solution has been accepted for this workspace.
func (w *Workspace) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}
