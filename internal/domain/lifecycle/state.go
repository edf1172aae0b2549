package lifecycle

// State represents a stage in the engagement lifecycle
type State string

const (
	StateDraft             State = "draft"
	StateAcceptancePending State = "acceptance_pending"
	StateAccepted          State = "accepted"
	StatePlanning          State = "planning"
	StatePlanningReview    State = "planning_review"
	StateFieldwork         State = "fieldwork"
	StateFieldworkReview   State = "fieldwork_review"
	StateWrapUp            State = "wrap_up"
	StateReporting         State = "reporting"
	StatePartnerReview     State = "partner_review"
	StateIssued            State = "issued"
	StateArchived          State = "archived"
)

// AllStates lists every lifecycle state in forward order.
var AllStates = []State{
	StateDraft,
	StateAcceptancePending,
	StateAccepted,
	StatePlanning,
	StatePlanningReview,
	StateFieldwork,
	StateFieldworkReview,
	StateWrapUp,
	StateReporting,
	StatePartnerReview,
	StateIssued,
	StateArchived,
}

var validStates = map[State]bool{
	StateDraft:             true,
	StateAcceptancePending: true,
	StateAccepted:          true,
	StatePlanning:          true,
	StatePlanningReview:    true,
	StateFieldwork:         true,
	StateFieldworkReview:   true,
	StateWrapUp:            true,
	StateReporting:         true,
	StatePartnerReview:     true,
	StateIssued:            true,
	StateArchived:          true,
}

// archived is the only state with no outgoing transitions; issued still
// admits archiving.
var terminalStates = map[State]bool{
	StateArchived: true,
}

// IsTerminal returns true if the state has no outgoing transitions
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a member of the declared state set.
// A persisted state outside this set is a data-integrity error, not a
// machine state.
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
