package phase

import (
	"errors"
	"fmt"
	"time"
)

// Phase is one stage of a game session's fixed timeline.
type Phase string

const (
	Lobby Phase = "lobby"
	One   Phase = "phase_one"
	Two   Phase = "phase_two"
	Ended Phase = "ended"
)

// ErrNotStarted is returned when the session has no anchor yet, or the anchor
// lies in the future. Callers must treat it as "show a placeholder", never as
// zero seconds remaining.
var ErrNotStarted = errors.New("session not started")

// ErrUnknownPhase is returned for a phase label outside the fixed timeline.
// It is a configuration error and will not heal on retry.
var ErrUnknownPhase = errors.New("unknown phase label")

// Parse maps a wire phase label to a Phase. An unknown label is a
// configuration error, never silently defaulted: a wrong guess could trap a
// participant in the wrong view.
func Parse(label string) (Phase, error) {
	switch Phase(label) {
	case Lobby, One, Two, Ended:
		return Phase(label), nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownPhase, label)
}

// Timeline is the session's authoritative schedule: one anchor timestamp plus
// a fixed duration per phase. Deadlines are always recomputed from the anchor,
// never accumulated, so they cannot drift across suspend/resume.
type Timeline struct {
	Anchor   time.Time
	PhaseOne time.Duration
	PhaseTwo time.Duration
}

// NewTimeline builds a Timeline from the platform's timing answer. A zero
// anchor is a configuration error.
func NewTimeline(anchor time.Time, phaseOneMinutes, phaseTwoMinutes int) (Timeline, error) {
	if anchor.IsZero() {
		return Timeline{}, fmt.Errorf("invalid timeline: %w", ErrNotStarted)
	}
	if phaseOneMinutes < 0 || phaseTwoMinutes < 0 {
		return Timeline{}, fmt.Errorf("invalid timeline: negative duration (%dm, %dm)", phaseOneMinutes, phaseTwoMinutes)
	}
	return Timeline{
		Anchor:   anchor,
		PhaseOne: time.Duration(phaseOneMinutes) * time.Minute,
		PhaseTwo: time.Duration(phaseTwoMinutes) * time.Minute,
	}, nil
}

// Deadline returns the absolute end of the given phase.
func (t Timeline) Deadline(p Phase) time.Time {
	switch p {
	case Lobby:
		return t.Anchor
	case One:
		return t.Anchor.Add(t.PhaseOne)
	default:
		return t.Anchor.Add(t.PhaseOne + t.PhaseTwo)
	}
}

// At returns the phase in effect at the given instant.
func (t Timeline) At(now time.Time) (Phase, error) {
	if t.Anchor.IsZero() || now.Before(t.Anchor) {
		return "", ErrNotStarted
	}
	elapsed := now.Sub(t.Anchor)
	switch {
	case elapsed < t.PhaseOne:
		return One, nil
	case elapsed < t.PhaseOne+t.PhaseTwo:
		return Two, nil
	default:
		return Ended, nil
	}
}

// Remaining returns the time left until the deadline of phase p, floored at
// zero. It is monotonically non-increasing in now.
func (t Timeline) Remaining(now time.Time, p Phase) (time.Duration, error) {
	if t.Anchor.IsZero() || now.Before(t.Anchor) {
		return 0, ErrNotStarted
	}
	left := t.Deadline(p).Sub(now)
	if left < 0 {
		left = 0
	}
	return left, nil
}

// Next returns the phase that follows p on the timeline.
func (p Phase) Next() Phase {
	switch p {
	case Lobby:
		return One
	case One:
		return Two
	default:
		return Ended
	}
}
