package arena

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ActiveSession is the platform's answer to "does this participant have a
// game in progress right now".
type ActiveSession struct {
	HasActiveGame    bool   `json:"has_active_game"`
	GameID           int    `json:"game_id"`
	CurrentPhase     string `json:"current_phase"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

// SessionStatus is the lobby polling answer. ActualStartDate is nil until a
// teacher starts the session; it is the anchor every deadline derives from.
type SessionStatus struct {
	GameID           int        `json:"game_id"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	StartDate        time.Time  `json:"start_date"`
	ActualStartDate  *time.Time `json:"actual_start_date"`
	DurationPhase1   int        `json:"duration_phase1"`
	DurationPhase2   int        `json:"duration_phase2"`
	ParticipantCount int        `json:"participant_count"`
}

// Started reports whether the session's anchor timestamp has been set.
func (s SessionStatus) Started() bool {
	return s.ActualStartDate != nil
}

// SessionTiming carries the anchor plus phase durations in minutes.
type SessionTiming struct {
	ActualStartDate *time.Time `json:"actual_start_date"`
	DurationPhase1  int        `json:"duration_phase1"`
	DurationPhase2  int        `json:"duration_phase2"`
}

// GetActiveSession asks whether the participant has an in-progress session,
// and if so which phase it is in and how many seconds remain.
func (c *Client) GetActiveSession(ctx context.Context, participantID int) (ActiveSession, error) {
	query := url.Values{}
	query.Set("student_id", strconv.Itoa(participantID))

	var out ActiveSession
	if err := c.get(ctx, pathActiveSession, query, &out); err != nil {
		return ActiveSession{}, err
	}
	return out, nil
}

// GetSessionStatus polls one session for the lobby-to-started transition.
func (c *Client) GetSessionStatus(ctx context.Context, gameID int) (SessionStatus, error) {
	var out SessionStatus
	if err := c.get(ctx, fmt.Sprintf(pathSessionStatus, gameID), nil, &out); err != nil {
		return SessionStatus{}, err
	}
	return out, nil
}

// GetSessionTiming fetches the anchor timestamp and phase durations used to
// seed a phase clock.
func (c *Client) GetSessionTiming(ctx context.Context, gameID int) (SessionTiming, error) {
	var out SessionTiming
	if err := c.get(ctx, fmt.Sprintf(pathSessionTiming, gameID), nil, &out); err != nil {
		return SessionTiming{}, err
	}
	return out, nil
}
