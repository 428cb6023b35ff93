package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/neorya/arena/internal/events"
)

// SessionEvent is the wire shape pushed to WebSocket clients.
type SessionEvent struct {
	ID        string          `json:"id"`
	GameID    int             `json:"game_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType is the client-facing event type.
type EventType string

const (
	EventTypeSessionStarted EventType = "SessionStarted"
	EventTypePhaseStarted   EventType = "PhaseStarted"
	EventTypePhaseEnded     EventType = "PhaseEnded"
	EventTypeCountdownTick  EventType = "CountdownTick"
	EventTypeVoteSubmitted  EventType = "VoteSubmitted"
	EventTypeRouteChanged   EventType = "RouteChanged"
	EventTypeResultReady    EventType = "ResultReady"
)

// mapEventType translates a stream event type into its client-facing name.
func mapEventType(streamType string) (EventType, error) {
	switch streamType {
	case events.TypeSessionStarted:
		return EventTypeSessionStarted, nil
	case events.TypePhaseStarted:
		return EventTypePhaseStarted, nil
	case events.TypePhaseEnded:
		return EventTypePhaseEnded, nil
	case events.TypeCountdownTick:
		return EventTypeCountdownTick, nil
	case events.TypeVoteSubmitted:
		return EventTypeVoteSubmitted, nil
	case events.TypeRouteChanged:
		return EventTypeRouteChanged, nil
	case events.TypeResultReady:
		return EventTypeResultReady, nil
	}
	return "", fmt.Errorf("unknown event type: %s", streamType)
}
