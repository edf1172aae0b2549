package lifecycle

import "fmt"

// TransitionResult is the outcome of evaluating an action. Success implies
// NewState is set; failure implies Error and Code are set. It is a value,
// never an exception: ordinary denial is not an error condition.
type TransitionResult struct {
	Success  bool       `json:"success"`
	NewState State      `json:"new_state,omitempty"`
	Error    string     `json:"error,omitempty"`
	Code     DenialCode `json:"code,omitempty"`
}

// Requirement describes one unmet precondition in display form
type Requirement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Machine evaluates the transition rule table against a context snapshot.
// It is a pure function of the snapshot: it performs no I/O and never
// mutates anything, so repeated calls with the same context always return
// the same answers. Persisting the resulting state is the orchestrator's
// job.
type Machine struct {
	ctx Context
}

// NewMachine constructs a machine over the given snapshot. A current state
// outside the declared set is a data-integrity failure, not a usable
// machine.
func NewMachine(ctx Context) (*Machine, error) {
	if !ctx.CurrentState.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, ctx.CurrentState)
	}
	return &Machine{ctx: ctx}, nil
}

// State returns the snapshot's current state
func (m *Machine) State() State {
	return m.ctx.CurrentState
}

// AvailableActions returns every action defined from the current state
// whose preconditions all hold, in rule-table order.
func (m *Machine) AvailableActions() []Action {
	var actions []Action
	for _, r := range rulesFrom(m.ctx.CurrentState) {
		if m.preconditionsMet(r) {
			actions = append(actions, r.Action)
		}
	}
	return actions
}

// CanPerform evaluates a single action without side effects. The error
// message distinguishes an undefined action from an unmet precondition so
// callers can surface the specific blocking requirement.
func (m *Machine) CanPerform(action Action) TransitionResult {
	return m.evaluate(action)
}

// Perform evaluates an action and, on success, reports the resulting state.
// It never throws for ordinary denial and never silently no-ops.
func (m *Machine) Perform(action Action) TransitionResult {
	return m.evaluate(action)
}

// BlockingRequirements returns every unmet precondition for an action, in
// rule order. Returns ErrInvalidTransition if the action is not defined
// from the current state at all.
func (m *Machine) BlockingRequirements(action Action) ([]Requirement, error) {
	rule, ok := findRule(m.ctx.CurrentState, action)
	if !ok {
		return nil, fmt.Errorf("%w: action %q from state %q",
			ErrInvalidTransition, action, m.ctx.CurrentState)
	}

	var unmet []Requirement
	for _, p := range rule.Preconditions {
		if !p.Met(&m.ctx) {
			unmet = append(unmet, Requirement{Name: p.Name, Description: p.Description})
		}
	}
	return unmet, nil
}

func (m *Machine) evaluate(action Action) TransitionResult {
	rule, ok := findRule(m.ctx.CurrentState, action)
	if !ok {
		return TransitionResult{
			Success: false,
			Code:    DenialInvalidAction,
			Error: fmt.Sprintf("action %q is not valid from state %q",
				action, m.ctx.CurrentState),
		}
	}

	for _, p := range rule.Preconditions {
		if !p.Met(&m.ctx) {
			code := DenialPrecondition
			if p.Authz {
				code = DenialAuthorization
			}
			return TransitionResult{
				Success: false,
				Code:    code,
				Error:   fmt.Sprintf("precondition not met: %s", p.Description),
			}
		}
	}

	return TransitionResult{Success: true, NewState: rule.To}
}

func (m *Machine) preconditionsMet(r Rule) bool {
	for _, p := range r.Preconditions {
		if !p.Met(&m.ctx) {
			return false
		}
	}
	return true
}
