package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published on the session event stream.
const (
	TypeSessionStarted = "session.started"
	TypePhaseStarted   = "phase.started"
	TypePhaseEnded     = "phase.ended"
	TypeCountdownTick  = "countdown.tick"
	TypeVoteSubmitted  = "vote.submitted"
	TypeRouteChanged   = "route.changed"
	TypeResultReady    = "result.ready"
)

// Event is one session event before serialization. Payload is one of the
// payload structs below, matching Type.
type Event struct {
	ID      uuid.UUID
	Type    string
	GameID  int
	Payload any
}

// NewEvent assigns a fresh event ID, which doubles as the JetStream
// message ID for duplicate suppression.
func NewEvent(eventType string, gameID int, payload any) Event {
	return Event{
		ID:      uuid.New(),
		Type:    eventType,
		GameID:  gameID,
		Payload: payload,
	}
}

// SessionStarted signals that the lobby resolved into a running session.
type SessionStarted struct {
	GameID    int       `json:"game_id"`
	StartedAt time.Time `json:"started_at"`
}

// PhaseStarted signals entry into a phase of the session timeline.
type PhaseStarted struct {
	GameID   int    `json:"game_id"`
	Phase    string `json:"phase"`
	Deadline string `json:"deadline"`
}

// PhaseEnded signals that a phase deadline elapsed.
type PhaseEnded struct {
	GameID int    `json:"game_id"`
	Phase  string `json:"phase"`
}

// CountdownTick carries the whole-seconds remaining in the current phase.
type CountdownTick struct {
	GameID    int    `json:"game_id"`
	Phase     string `json:"phase"`
	Remaining int    `json:"remaining_seconds"`
}

// VoteSubmitted signals that a review vote was accepted.
type VoteSubmitted struct {
	GameID       int    `json:"game_id"`
	AssignmentID int    `json:"assignment_id"`
	Category     string `json:"category"`
}

// RouteChanged tells connected clients which view the session is in now.
type RouteChanged struct {
	GameID int    `json:"game_id"`
	Route  string `json:"route"`
}

// ResultReady signals that finalization completed and the participant's
// result can be fetched.
type ResultReady struct {
	GameID     int `json:"game_id"`
	SolutionID int `json:"solution_id"`
}
