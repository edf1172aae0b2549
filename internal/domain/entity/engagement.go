package entity

import "time"

// Checklist holds the persisted compliance gates for an engagement. Each
// flag backs one named precondition in the lifecycle rule table. The
// partner sign-off gate is intentionally absent: it is derived from the
// workpaper sign-off chains, never stored here.
type Checklist struct {
	IndependenceConfirmed  bool `json:"independence_confirmed"`
	ClientAccepted         bool `json:"client_accepted"`
	EngagementLetterSigned bool `json:"engagement_letter_signed"`
	PlanningMemoApproved   bool `json:"planning_memo_approved"`
	RiskAssessmentComplete bool `json:"risk_assessment_complete"`
	MaterialitySet         bool `json:"materiality_set"`
	AllProceduresComplete  bool `json:"all_procedures_complete"`
	ReviewNotesCleared     bool `json:"review_notes_cleared"`
	WrapUpComplete         bool `json:"wrap_up_complete"`
	EQCRComplete           bool `json:"eqcr_complete"`
	ReportApproved         bool `json:"report_approved"`
}

// Engagement represents a single audit assignment tracked through the
// fixed lifecycle
type Engagement struct {
	ID            int64      `json:"id"`
	ClientName    string     `json:"client_name"`
	Title         string     `json:"title"`
	PeriodEnd     string     `json:"period_end"`
	CurrentState  string     `json:"current_state"`
	PartnerUserID string     `json:"partner_user_id"`
	ManagerUserID string     `json:"manager_user_id"`
	Checklist     Checklist  `json:"checklist"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
