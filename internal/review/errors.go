package review

import "errors"

var (
	// ErrPhaseClosed is returned once the review phase deadline has passed.
	// The authoritative deadline owns correctness, not UI disablement.
	ErrPhaseClosed = errors.New("review phase has ended")

	// ErrAlreadyVoted is returned for a second vote on the same assignment.
	// A vote transition is terminal; no re-submission path exists.
	ErrAlreadyVoted = errors.New("assignment already voted")

	// ErrSubmitInFlight is returned when a vote for the assignment is still
	// on the wire, so a double-acting user cannot submit twice.
	ErrSubmitInFlight = errors.New("vote submission already in flight")

	// ErrUnknownAssignment is returned for an assignment id the manager has
	// never loaded.
	ErrUnknownAssignment = errors.New("unknown assignment")

	// ErrMissingCounterexample is returned for an incorrect vote without
	// both counterexample fields.
	ErrMissingCounterexample = errors.New("incorrect vote requires counterexample input and expected output")

	// ErrImpossibleCounterexample is returned when the counterexample is the
	// known-impossible placeholder pair. The server repeats this check
	// authoritatively; rejecting here is the last line of defense before the
	// network call.
	ErrImpossibleCounterexample = errors.New("counterexample cannot match the reference solution")

	// ErrUnknownCategory is returned for a vote category outside
	// correct/incorrect/skip.
	ErrUnknownCategory = errors.New("unknown vote category")
)
