package arena

import (
	"context"
	"net/url"
	"strconv"
)

// MatchDetails is the problem statement shown during the coding phase.
type MatchDetails struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TestCase is a public sample test or a participant-authored test.
type TestCase struct {
	TestID  int    `json:"test_id"`
	TestIn  string `json:"test_in"`
	TestOut string `json:"test_out"`
	Scope   string `json:"scope"`
}

type participantTestRequest struct {
	StudentID int    `json:"student_id"`
	GameID    int    `json:"game_id"`
	TestIn    string `json:"test_in"`
	TestOut   string `json:"test_out"`
}

// AddedTest is the acknowledgement for a participant-authored test.
type AddedTest struct {
	TestID  int    `json:"test_id"`
	Message string `json:"message"`
}

type submitSolutionRequest struct {
	StudentID int    `json:"student_id"`
	GameID    int    `json:"game_id"`
	Code      string `json:"code"`
}

// SubmittedSolution is the acknowledgement for a solution submission.
type SubmittedSolution struct {
	SolutionID int    `json:"solution_id"`
	Message    string `json:"message"`
}

// GetMatchDetails fetches the title and description of the participant's
// assigned match.
func (c *Client) GetMatchDetails(ctx context.Context, gameID int) (MatchDetails, error) {
	query := url.Values{}
	query.Set("game_id", strconv.Itoa(gameID))

	var out MatchDetails
	if err := c.get(ctx, pathMatchDetails, query, &out); err != nil {
		return MatchDetails{}, err
	}
	return out, nil
}

// ListPublicTests fetches the public sample tests for the participant's
// assigned match.
func (c *Client) ListPublicTests(ctx context.Context, participantID, gameID int) ([]TestCase, error) {
	query := url.Values{}
	query.Set("student_id", strconv.Itoa(participantID))
	query.Set("game_id", strconv.Itoa(gameID))

	var out []TestCase
	if err := c.get(ctx, pathPublicTests, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddParticipantTest records a test case authored by the participant.
func (c *Client) AddParticipantTest(ctx context.Context, participantID, gameID int, testIn, testOut string) (AddedTest, error) {
	req := participantTestRequest{
		StudentID: participantID,
		GameID:    gameID,
		TestIn:    testIn,
		TestOut:   testOut,
	}
	var out AddedTest
	if err := c.post(ctx, pathParticipantTest, req, &out); err != nil {
		return AddedTest{}, err
	}
	return out, nil
}

// SubmitSolution submits the participant's source code for the coding phase.
func (c *Client) SubmitSolution(ctx context.Context, participantID, gameID int, code string) (SubmittedSolution, error) {
	req := submitSolutionRequest{
		StudentID: participantID,
		GameID:    gameID,
		Code:      code,
	}
	var out SubmittedSolution
	if err := c.post(ctx, pathSubmitSolution, req, &out); err != nil {
		return SubmittedSolution{}, err
	}
	return out, nil
}
