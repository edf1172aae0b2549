package lifecycle

import "errors"

var (
	// ErrInvalidState is returned when a loaded engagement carries a state
	// outside the declared state set
	ErrInvalidState = errors.New("invalid engagement state")

	// ErrInvalidTransition is returned when an action is not defined from
	// the current state
	ErrInvalidTransition = errors.New("invalid state transition")
)

// DenialCode classifies why a transition was denied
type DenialCode string

const (
	DenialNone          DenialCode = ""
	DenialInvalidAction DenialCode = "invalid_transition"
	DenialPrecondition  DenialCode = "precondition_not_met"
	DenialAuthorization DenialCode = "authorization_denied"
	DenialConflict      DenialCode = "concurrency_conflict"
)
