package lifecycle

// Context is a point-in-time snapshot of everything a transition decision
// depends on. It is assembled fresh per evaluation by the orchestrator and
// never persisted; the machine reads it and nothing else.
type Context struct {
	EngagementID int64
	CurrentState State

	// Acting party
	UserID              string
	UserRole            string
	IsEngagementPartner bool
	IsManager           bool

	// Compliance checklist, one flag per regulatory gate
	IndependenceConfirmed  bool
	ClientAccepted         bool
	EngagementLetterSigned bool
	PlanningMemoApproved   bool
	RiskAssessmentComplete bool
	MaterialitySet         bool
	AllProceduresComplete  bool
	ReviewNotesCleared     bool
	WrapUpComplete         bool
	EQCRComplete           bool
	PartnerSignoff         bool
	ReportApproved         bool
}
