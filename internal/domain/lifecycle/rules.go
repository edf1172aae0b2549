package lifecycle

// Rule declares a single legal transition: the action that causes it, the
// resulting state, and the preconditions that must all hold. Absence of a
// rule for a (state, action) pair means the action is illegal from that
// state.
type Rule struct {
	From          State
	Action        Action
	To            State
	Preconditions []Precondition
}

// ruleTable is the complete transition map for the engagement lifecycle.
// Order matters: AvailableActions reports actions in table order so UI
// rendering is stable.
var ruleTable = []Rule{
	{
		From:          StateDraft,
		Action:        ActionSubmitForAcceptance,
		To:            StateAcceptancePending,
		Preconditions: []Precondition{IndependenceConfirmed, ClientAccepted},
	},
	{
		From:          StateAcceptancePending,
		Action:        ActionApproveAcceptance,
		To:            StateAccepted,
		Preconditions: []Precondition{ActingPartner},
	},
	{
		From:          StateAccepted,
		Action:        ActionBeginPlanning,
		To:            StatePlanning,
		Preconditions: []Precondition{EngagementLetterSigned},
	},
	{
		From:          StatePlanning,
		Action:        ActionCompletePlanning,
		To:            StatePlanningReview,
		Preconditions: []Precondition{PlanningMemoApproved, RiskAssessmentComplete, MaterialitySet},
	},
	{
		From:          StatePlanningReview,
		Action:        ActionApprovePlanning,
		To:            StateFieldwork,
		Preconditions: []Precondition{ActingPartnerOrManager},
	},
	{
		From:          StateFieldwork,
		Action:        ActionCompleteFieldwork,
		To:            StateFieldworkReview,
		Preconditions: []Precondition{AllProceduresComplete},
	},
	{
		From:          StateFieldworkReview,
		Action:        ActionCompleteReview,
		To:            StateWrapUp,
		Preconditions: []Precondition{ReviewNotesCleared, ActingPartnerOrManager},
	},
	{
		From:          StateWrapUp,
		Action:        ActionBeginReporting,
		To:            StateReporting,
		Preconditions: []Precondition{WrapUpComplete},
	},
	{
		From:          StateReporting,
		Action:        ActionSubmitForPartnerReview,
		To:            StatePartnerReview,
		Preconditions: []Precondition{EQCRComplete},
	},
	{
		From:          StatePartnerReview,
		Action:        ActionIssueReport,
		To:            StateIssued,
		Preconditions: []Precondition{PartnerSignoff, ReportApproved, ActingPartner},
	},
	{
		From:          StateIssued,
		Action:        ActionArchiveEngagement,
		To:            StateArchived,
		Preconditions: []Precondition{ActingPartnerOrManager},
	},
}

// Rules returns the full transition table in declaration order.
func Rules() []Rule {
	out := make([]Rule, len(ruleTable))
	copy(out, ruleTable)
	return out
}

// findRule looks up the rule for a (state, action) pair.
func findRule(from State, action Action) (Rule, bool) {
	for _, r := range ruleTable {
		if r.From == from && r.Action == action {
			return r, true
		}
	}
	return Rule{}, false
}

// rulesFrom returns all rules whose source is the given state, in table
// order.
func rulesFrom(from State) []Rule {
	var out []Rule
	for _, r := range ruleTable {
		if r.From == from {
			out = append(out, r)
		}
	}
	return out
}
