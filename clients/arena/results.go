package arena

import (
	"context"
	"fmt"
)

// PersonalResult points at the participant's own graded solution.
type PersonalResult struct {
	SolutionID int `json:"solution_id"`
}

// TriggerScoreComputation asks the platform to compute session scores. The
// operation is idempotent server-side: every participant's client fires it at
// roughly the same time and duplicates are harmless.
func (c *Client) TriggerScoreComputation(ctx context.Context, gameID int) error {
	return c.post(ctx, fmt.Sprintf(pathComputeScores, gameID), nil, nil)
}

// TriggerBadgeEvaluation asks the platform to evaluate achievement badges for
// the session. Idempotent, same rationale as score computation.
func (c *Client) TriggerBadgeEvaluation(ctx context.Context, gameID int) error {
	return c.post(ctx, fmt.Sprintf(pathEvaluateBadges, gameID), nil, nil)
}

// ResolvePersonalResult looks up the participant's solution reference for the
// results view.
func (c *Client) ResolvePersonalResult(ctx context.Context, participantID, gameID int) (PersonalResult, error) {
	var out PersonalResult
	if err := c.get(ctx, fmt.Sprintf(pathPersonalResult, participantID, gameID), nil, &out); err != nil {
		return PersonalResult{}, err
	}
	return out, nil
}
