package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neorya/arena/clients/arena"
)

type stubPhaseOneAPI struct {
	match     arena.MatchDetails
	tests     []arena.TestCase
	addErr    error
	submitErr error

	nextTestID     int
	nextSolutionID int
	submissions    []string
}

func (s *stubPhaseOneAPI) GetMatchDetails(_ context.Context, _ int) (arena.MatchDetails, error) {
	return s.match, nil
}

func (s *stubPhaseOneAPI) ListPublicTests(_ context.Context, _, _ int) ([]arena.TestCase, error) {
	return s.tests, nil
}

func (s *stubPhaseOneAPI) AddParticipantTest(_ context.Context, _, _ int, _, _ string) (arena.AddedTest, error) {
	if s.addErr != nil {
		return arena.AddedTest{}, s.addErr
	}
	s.nextTestID++
	return arena.AddedTest{TestID: s.nextTestID, Message: "test added"}, nil
}

func (s *stubPhaseOneAPI) SubmitSolution(_ context.Context, _, _ int, code string) (arena.SubmittedSolution, error) {
	if s.submitErr != nil {
		return arena.SubmittedSolution{}, s.submitErr
	}
	s.submissions = append(s.submissions, code)
	s.nextSolutionID++
	return arena.SubmittedSolution{SolutionID: s.nextSolutionID, Message: "accepted"}, nil
}

func newTestStore(t *testing.T) *RedisDraftStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDraftStore(client, time.Hour)
}

func defaultAPI() *stubPhaseOneAPI {
	return &stubPhaseOneAPI{
		match: arena.MatchDetails{Title: "Sum of Two", Description: "Add two integers."},
		tests: []arena.TestCase{
			{TestID: 1, TestIn: "1 2", TestOut: "3", Scope: "public"},
		},
	}
}

func TestOpenLoadsMatchAndTests(t *testing.T) {
	w := New(defaultAPI(), newTestStore(t), 3, 7)

	require.NoError(t, w.Open(context.Background()))
	assert.Equal(t, "Sum of Two", w.Match().Title)
	assert.Len(t, w.Tests(), 1)
	assert.Empty(t, w.Code())
}

func TestDraftSurvivesReopen(t *testing.T) {
	store := newTestStore(t)
	api := defaultAPI()

	w := New(api, store, 3, 7)
	require.NoError(t, w.Open(context.Background()))
	w.SetCode(context.Background(), "print(input())")

	// Simulate a reconnect: a fresh workspace against the same store.
	w2 := New(api, store, 3, 7)
	require.NoError(t, w2.Open(context.Background()))
	assert.Equal(t, "print(input())", w2.Code())
}

func TestDraftsScopedPerParticipantAndSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 3, 7, "mine"))
	require.NoError(t, store.Save(ctx, 4, 7, "theirs"))

	code, err := store.Load(ctx, 3, 7)
	require.NoError(t, err)
	assert.Equal(t, "mine", code)

	_, err = store.Load(ctx, 3, 8)
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestAddTestAppendsToVisibleList(t *testing.T) {
	w := New(defaultAPI(), newTestStore(t), 3, 7)
	require.NoError(t, w.Open(context.Background()))

	added, err := w.AddTest(context.Background(), "5", "10")
	require.NoError(t, err)
	assert.NotZero(t, added.TestID)

	tests := w.Tests()
	require.Len(t, tests, 2)
	assert.Equal(t, "student", tests[1].Scope)
	assert.Equal(t, "5", tests[1].TestIn)
}

func TestSubmitClearsDraftAndIsSingleShot(t *testing.T) {
	store := newTestStore(t)
	api := defaultAPI()
	w := New(api, store, 3, 7)
	require.NoError(t, w.Open(context.Background()))

	w.SetCode(context.Background(), "final answer")
	sol, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sol.SolutionID)
	assert.Equal(t, []string{"final answer"}, api.submissions)
	assert.True(t, w.Submitted())

	_, err = store.Load(context.Background(), 3, 7)
	assert.ErrorIs(t, err, ErrNoDraft)

	_, err = w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Len(t, api.submissions, 1)
}

func TestSubmitFailureAllowsRetry(t *testing.T) {
	api := defaultAPI()
	api.submitErr = errors.New("service unavailable")
	w := New(api, newTestStore(t), 3, 7)
	require.NoError(t, w.Open(context.Background()))
	w.SetCode(context.Background(), "x")

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.False(t, w.Submitted())

	api.submitErr = nil
	_, err = w.Submit(context.Background())
	assert.NoError(t, err)
}

func TestOpenToleratesStoreOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewRedisDraftStore(client, time.Hour)
	mr.Close()

	w := New(defaultAPI(), store, 3, 7)
	require.NoError(t, w.Open(context.Background()))
	assert.Empty(t, w.Code())
}
