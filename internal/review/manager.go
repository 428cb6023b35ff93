package review

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/neorya/arena/clients/arena"
)

// Category is the participant's verdict on an assigned solution.
type Category string

const (
	Correct   Category = "correct"
	Incorrect Category = "incorrect"
	Skip      Category = "skip"
)

// The platform seeds review panels with this placeholder pair for teacher
// dry-runs; a vote built from it can never be a real counterexample.
const (
	impossibleProofIn  = "InvalidInputForTeacher"
	impossibleProofOut = "ImpossibleOutput"
)

// Vote is one verdict on one assignment. ProofIn and ProofOut are the
// counterexample pair, mandatory for Incorrect and ignored otherwise. Note is
// optional free text for any category.
type Vote struct {
	Category Category
	ProofIn  string
	ProofOut string
	Note     string
}

// Assignment is a peer-review work item scoped to one reviewer and session.
// Vote is empty until a submission succeeds, after which the assignment is
// immutable for the rest of the session.
type Assignment struct {
	ID         int
	SolutionID int
	Pseudonym  string
	Code       string
	Vote       Category
}

// Voted reports whether the assignment has received its terminal vote.
func (a Assignment) Voted() bool {
	return a.Vote != ""
}

// API is what the manager needs from the platform client.
type API interface {
	ListReviewAssignments(ctx context.Context, gameID int) ([]arena.AssignedSolution, error)
	SubmitVote(ctx context.Context, req arena.VoteRequest) (arena.VoteResponse, error)
}

// Manager owns the assignment-and-vote lifecycle for one participant during
// the review phase: loading the work queue, validating votes, enforcing the
// one-vote-per-assignment rule, and refusing votes after the phase deadline.
type Manager struct {
	api    API
	gameID int
	onVote VoteObserver

	mu          sync.Mutex
	assignments map[int]*Assignment
	order       []int
	inFlight    map[int]bool
	closed      bool
}

// VoteObserver is notified after a vote is accepted by the server.
type VoteObserver func(assignmentID int, category Category)

type ManagerOption func(*Manager)

// WithVoteObserver registers a post-acceptance callback, e.g. for event
// publication.
func WithVoteObserver(fn VoteObserver) ManagerOption {
	return func(m *Manager) {
		m.onVote = fn
	}
}

func NewManager(api API, gameID int, opts ...ManagerOption) *Manager {
	m := &Manager{
		api:         api,
		gameID:      gameID,
		assignments: make(map[int]*Assignment),
		inFlight:    make(map[int]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadAssignments fetches the participant's review queue. Safe to call
// repeatedly, e.g. on a panel refresh: assignments already loaded keep their
// local vote state and are not duplicated.
func (m *Manager) LoadAssignments(ctx context.Context) ([]Assignment, error) {
	assigned, err := m.api.ListReviewAssignments(ctx, m.gameID)
	if err != nil {
		return nil, fmt.Errorf("load review assignments: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range assigned {
		if _, seen := m.assignments[s.ReviewID]; seen {
			continue
		}
		m.assignments[s.ReviewID] = &Assignment{
			ID:         s.ReviewID,
			SolutionID: s.SolutionID,
			Pseudonym:  s.Pseudonym,
			Code:       s.Code,
		}
		m.order = append(m.order, s.ReviewID)
	}

	log.Info().
		Int("game_id", m.gameID).
		Int("assignments", len(m.order)).
		Msg("review assignments loaded")

	return m.snapshotLocked(), nil
}

// Assignments returns the current queue in load order.
func (m *Manager) Assignments() []Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Pending returns the number of assignments still awaiting a vote.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.assignments {
		if !a.Voted() {
			n++
		}
	}
	return n
}

// Validate checks a vote's shape before any network call. Incorrect votes
// need a non-empty counterexample pair; other categories pass regardless of
// the counterexample fields, which are blanked at submission.
func (m *Manager) Validate(v Vote) error {
	switch v.Category {
	case Correct, Skip:
		return nil
	case Incorrect:
		if strings.TrimSpace(v.ProofIn) == "" || strings.TrimSpace(v.ProofOut) == "" {
			return ErrMissingCounterexample
		}
		if v.ProofIn == impossibleProofIn && v.ProofOut == impossibleProofOut {
			return ErrImpossibleCounterexample
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCategory, v.Category)
}

// Submit records a vote for one assignment. The assignment is locked locally
// before the network call, so a double-acting user cannot race a duplicate
// submission; on server failure the assignment reverts to unvoted and the
// error is surfaced for retry. A successful vote is terminal: later submits
// fail locally without contacting the server.
func (m *Manager) Submit(ctx context.Context, assignmentID int, v Vote) error {
	if err := m.Validate(v); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrPhaseClosed
	}
	a, ok := m.assignments[assignmentID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownAssignment, assignmentID)
	}
	if a.Voted() {
		m.mu.Unlock()
		return ErrAlreadyVoted
	}
	if m.inFlight[assignmentID] {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	m.inFlight[assignmentID] = true
	m.mu.Unlock()

	resp, err := m.api.SubmitVote(ctx, buildRequest(assignmentID, v))

	m.mu.Lock()
	delete(m.inFlight, assignmentID)

	if err != nil {
		m.mu.Unlock()
		log.Warn().Err(err).Int("assignment_id", assignmentID).Msg("vote submission failed")
		return fmt.Errorf("submit vote: %w", err)
	}

	// The phase may have closed while the vote was on the wire. The server
	// stays authoritative over what it accepted; locally the cutoff wins.
	if m.closed {
		m.mu.Unlock()
		log.Warn().Int("assignment_id", assignmentID).Msg("phase closed during vote submission")
		return ErrPhaseClosed
	}

	a.Vote = v.Category
	m.mu.Unlock()
	log.Info().
		Int("assignment_id", assignmentID).
		Int("review_vote_id", resp.ReviewVoteID).
		Str("category", string(v.Category)).
		Msg("vote recorded")

	if m.onVote != nil {
		m.onVote(assignmentID, v.Category)
	}
	return nil
}

// Close refuses all further votes. Called when the phase clock signals the
// end of the review phase.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		log.Info().Int("game_id", m.gameID).Msg("review phase closed to new votes")
	}
}

// Closed reports whether the manager has stopped accepting votes.
func (m *Manager) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Manager) snapshotLocked() []Assignment {
	out := make([]Assignment, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.assignments[id])
	}
	return out
}

func buildRequest(assignmentID int, v Vote) arena.VoteRequest {
	req := arena.VoteRequest{
		ReviewID: assignmentID,
		Vote:     string(v.Category),
	}
	// Only incorrect votes carry the counterexample pair on the wire.
	if v.Category == Incorrect {
		req.ProofTestIn = &v.ProofIn
		req.ProofTestOut = &v.ProofOut
	}
	if v.Note != "" {
		req.Note = &v.Note
	}
	return req
}
