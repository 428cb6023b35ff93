package review

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neorya/arena/clients/arena"
)

type stubAPI struct {
	mu          sync.Mutex
	assignments []arena.AssignedSolution
	listErr     error
	submitErr   error
	submitted   []arena.VoteRequest
	onSubmit    func()
}

func (s *stubAPI) ListReviewAssignments(_ context.Context, _ int) ([]arena.AssignedSolution, error) {
	return s.assignments, s.listErr
}

func (s *stubAPI) SubmitVote(_ context.Context, req arena.VoteRequest) (arena.VoteResponse, error) {
	if s.onSubmit != nil {
		s.onSubmit()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitErr != nil {
		return arena.VoteResponse{}, s.submitErr
	}
	s.submitted = append(s.submitted, req)
	return arena.VoteResponse{ReviewVoteID: 100 + len(s.submitted)}, nil
}

func (s *stubAPI) submitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submitted)
}

func twoAssignments() []arena.AssignedSolution {
	return []arena.AssignedSolution{
		{ReviewID: 1, SolutionID: 11, Pseudonym: "FalseKnight", Code: "print(1)"},
		{ReviewID: 2, SolutionID: 12, Pseudonym: "QuietOwl", Code: "print(2)"},
	}
}

func TestValidate(t *testing.T) {
	m := NewManager(&stubAPI{}, 7)

	tests := []struct {
		name    string
		vote    Vote
		wantErr error
	}{
		{"correct without proofs", Vote{Category: Correct}, nil},
		{"skip without proofs", Vote{Category: Skip}, nil},
		{"skip with proofs", Vote{Category: Skip, ProofIn: "5", ProofOut: "10"}, nil},
		{"incorrect with proofs", Vote{Category: Incorrect, ProofIn: "5", ProofOut: "10"}, nil},
		{"incorrect missing both", Vote{Category: Incorrect}, ErrMissingCounterexample},
		{"incorrect missing output", Vote{Category: Incorrect, ProofIn: "5"}, ErrMissingCounterexample},
		{"incorrect whitespace proofs", Vote{Category: Incorrect, ProofIn: "  ", ProofOut: "\t"}, ErrMissingCounterexample},
		{"incorrect placeholder pair", Vote{Category: Incorrect, ProofIn: "InvalidInputForTeacher", ProofOut: "ImpossibleOutput"}, ErrImpossibleCounterexample},
		{"unknown category", Vote{Category: "maybe"}, ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Validate(tt.vote)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoadAssignmentsDedupes(t *testing.T) {
	api := &stubAPI{assignments: twoAssignments()}
	m := NewManager(api, 7)

	first, err := m.LoadAssignments(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Vote on one, then reload: the vote survives and nothing duplicates.
	require.NoError(t, m.Submit(context.Background(), 1, Vote{Category: Correct}))

	second, err := m.LoadAssignments(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, Correct, second[0].Vote)
	assert.False(t, second[1].Voted())
}

func TestSubmitRecordsTerminalVote(t *testing.T) {
	api := &stubAPI{assignments: twoAssignments()}
	m := NewManager(api, 7)
	_, err := m.LoadAssignments(context.Background())
	require.NoError(t, err)

	vote := Vote{Category: Incorrect, ProofIn: "5", ProofOut: "10", Note: "off by one"}
	require.NoError(t, m.Submit(context.Background(), 1, vote))

	require.Equal(t, 1, api.submitCount())
	req := api.submitted[0]
	assert.Equal(t, 1, req.ReviewID)
	assert.Equal(t, "incorrect", req.Vote)
	require.NotNil(t, req.ProofTestIn)
	assert.Equal(t, "5", *req.ProofTestIn)
	require.NotNil(t, req.ProofTestOut)
	assert.Equal(t, "10", *req.ProofTestOut)
	require.NotNil(t, req.Note)
	assert.Equal(t, "off by one", *req.Note)

	assert.Equal(t, 1, m.Pending())
}

func TestSubmitCorrectOmitsProofs(t *testing.T) {
	api := &stubAPI{assignments: twoAssignments()}
	m := NewManager(api, 7)
	_, err := m.LoadAssignments(context.Background())
	require.NoError(t, err)

	// Stale proofs from an earlier draft must not leak onto the wire.
	require.NoError(t, m.Submit(context.Background(), 1, Vote{Category: Correct, ProofIn: "5", ProofOut: "10"}))

	req := api.submitted[0]
	assert.Nil(t, req.ProofTestIn)
	assert.Nil(t, req.ProofTestOut)
}

func TestDoubleSubmitRejectedLocally(t *testing.T) {
	api := &stubAPI{assignments: twoAssignments()}
	m := NewManager(api, 7)
	_, err := m.LoadAssignments(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Submit(context.Background(), 1, Vote{Category: Correct}))
	err = m.Submit(context.Background(), 1, Vote{Category: Skip})
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	// The second attempt never reached the server.
	assert.Equal(t, 1, api.submitCount())
}

func TestSubmitFailureRevertsToUnvoted(t *testing.T) {
	api := &stubAPI{assignments: twoAssignments(), submitErr: errors.New("gateway timeout")}
	m := NewManager(api, 7)
	_, err := m.LoadAssignments(context.Background())
	require.NoError(t, err)

	err = m.Submit(context.Background(), 1, Vote{Category: Correct})
	require.Error(t, err)
	assert.Equal(t, 2, m.Pending())

	// Retry after the transient failure clears.
	api.submitErr = nil
	require.NoError(t, m.Submit(context.Background(), 1, Vote{Category: Correct}))
	assert.Equal(t, 1, m.Pending())
}

func TestSubmitUnknownAssignment(t *testing.T) {
	api := &stubAPI{assignments: twoAssignments()}
	m := NewManager(api, 7)
	_, err := m.LoadAssignments(context.Background())
	require.NoError(t, err)

	err = m.Submit(context.Background(), 99, Vote{Category: Skip})
	assert.ErrorIs(t, err, ErrUnknownAssignment)
	assert.Equal(t, 0, api.submitCount())
}

func TestVoteObserverFiresOnAcceptanceOnly(t *testing.T) {
	api := &stubAPI{assignments: twoAssignments()}
	var observed []int
	m := NewManager(api, 7, WithVoteObserver(func(assignmentID int, category Category) {
		observed = append(observed, assignmentID)
		assert.Equal(t, Correct, category)
	}))
	_, err := m.LoadAssignments(context.Background())
	require.NoError(t, err)

	api.submitErr = errors.New("unavailable")
	require.Error(t, m.Submit(context.Background(), 1, Vote{Category: Correct}))
	assert.Empty(t, observed)

	api.submitErr = nil
	require.NoError(t, m.Submit(context.Background(), 1, Vote{Category: Correct}))
	assert.Equal(t, []int{1}, observed)
}

func TestCloseRefusesVotes(t *testing.T) {
	api := &stubAPI{assignments: twoAssignments()}
	m := NewManager(api, 7)
	_, err := m.LoadAssignments(context.Background())
	require.NoError(t, err)

	m.Close()
	assert.True(t, m.Closed())

	err = m.Submit(context.Background(), 1, Vote{Category: Correct})
	assert.ErrorIs(t, err, ErrPhaseClosed)
	assert.Equal(t, 0, api.submitCount())
}

func TestCloseDuringInFlightVoteRefusesLocally(t *testing.T) {
	api := &stubAPI{assignments: twoAssignments()}
	m := NewManager(api, 7)
	api.onSubmit = m.Close
	_, err := m.LoadAssignments(context.Background())
	require.NoError(t, err)

	err = m.Submit(context.Background(), 1, Vote{Category: Correct})
	assert.ErrorIs(t, err, ErrPhaseClosed)

	// The deadline cut the vote off locally even though the wire call went
	// out before it fired.
	assert.Equal(t, 2, m.Pending())
	assert.False(t, m.Assignments()[0].Voted())
}
