package arena

import (
	"context"
	"net/url"
	"strconv"
)

// AssignedSolution is one peer-review assignment: an anonymized solution the
// authenticated participant must vote on.
type AssignedSolution struct {
	ReviewID   int    `json:"student_assigned_review_id"`
	SolutionID int    `json:"assigned_solution_id"`
	Code       string `json:"code"`
	Pseudonym  string `json:"pseudonym"`
}

// VoteRequest is the wire shape of one vote. ProofTestIn/ProofTestOut are only
// sent for "incorrect" votes; the server re-validates this rule.
type VoteRequest struct {
	ReviewID     int     `json:"student_assigned_review_id"`
	Vote         string  `json:"vote"`
	ProofTestIn  *string `json:"proof_test_in"`
	ProofTestOut *string `json:"proof_test_out"`
	Note         *string `json:"note"`
}

type VoteResponse struct {
	ReviewVoteID int    `json:"review_vote_id"`
	Message      string `json:"message"`
	Valid        *bool  `json:"valid"`
}

// ListReviewAssignments fetches the authenticated participant's review queue
// for a session. The server assigns reviews lazily on first call, so this is
// safe to call repeatedly.
func (c *Client) ListReviewAssignments(ctx context.Context, gameID int) ([]AssignedSolution, error) {
	query := url.Values{}
	query.Set("game_id", strconv.Itoa(gameID))

	var out []AssignedSolution
	if err := c.get(ctx, pathAssignments, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitVote records a vote on an assigned review.
func (c *Client) SubmitVote(ctx context.Context, req VoteRequest) (VoteResponse, error) {
	var out VoteResponse
	if err := c.post(ctx, pathVote, req, &out); err != nil {
		return VoteResponse{}, err
	}
	return out, nil
}
