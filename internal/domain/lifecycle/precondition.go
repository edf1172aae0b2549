package lifecycle

// Precondition is a named boolean predicate over the engagement context.
// Role requirements are encoded as preconditions too (with Authz set) so a
// single evaluation pass produces a single allow/deny answer.
type Precondition struct {
	Name        string
	Description string
	Authz       bool
	Met         func(c *Context) bool
}

var (
	IndependenceConfirmed = Precondition{
		Name:        "independence_confirmed",
		Description: "Independence must be confirmed",
		Met:         func(c *Context) bool { return c.IndependenceConfirmed },
	}
	ClientAccepted = Precondition{
		Name:        "client_accepted",
		Description: "Client acceptance procedures must be completed",
		Met:         func(c *Context) bool { return c.ClientAccepted },
	}
	EngagementLetterSigned = Precondition{
		Name:        "engagement_letter_signed",
		Description: "Engagement letter must be signed",
		Met:         func(c *Context) bool { return c.EngagementLetterSigned },
	}
	PlanningMemoApproved = Precondition{
		Name:        "planning_memo_approved",
		Description: "Planning memorandum must be approved",
		Met:         func(c *Context) bool { return c.PlanningMemoApproved },
	}
	RiskAssessmentComplete = Precondition{
		Name:        "risk_assessment_complete",
		Description: "Risk assessment must be completed",
		Met:         func(c *Context) bool { return c.RiskAssessmentComplete },
	}
	MaterialitySet = Precondition{
		Name:        "materiality_set",
		Description: "Materiality must be set",
		Met:         func(c *Context) bool { return c.MaterialitySet },
	}
	AllProceduresComplete = Precondition{
		Name:        "all_procedures_complete",
		Description: "All audit procedures must be completed",
		Met:         func(c *Context) bool { return c.AllProceduresComplete },
	}
	ReviewNotesCleared = Precondition{
		Name:        "review_notes_cleared",
		Description: "All review notes must be cleared",
		Met:         func(c *Context) bool { return c.ReviewNotesCleared },
	}
	WrapUpComplete = Precondition{
		Name:        "wrap_up_complete",
		Description: "Wrap-up procedures must be completed",
		Met:         func(c *Context) bool { return c.WrapUpComplete },
	}
	EQCRComplete = Precondition{
		Name:        "eqcr_complete",
		Description: "Engagement quality control review must be completed",
		Met:         func(c *Context) bool { return c.EQCRComplete },
	}
	PartnerSignoff = Precondition{
		Name:        "partner_signoff",
		Description: "All workpapers must carry partner sign-off",
		Met:         func(c *Context) bool { return c.PartnerSignoff },
	}
	ReportApproved = Precondition{
		Name:        "report_approved",
		Description: "Audit report must be approved",
		Met:         func(c *Context) bool { return c.ReportApproved },
	}

	ActingPartner = Precondition{
		Name:        "acting_user_is_engagement_partner",
		Description: "Only the engagement partner may perform this action",
		Authz:       true,
		Met:         func(c *Context) bool { return c.IsEngagementPartner },
	}
	ActingPartnerOrManager = Precondition{
		Name:        "acting_user_is_partner_or_manager",
		Description: "Only the engagement partner or manager may perform this action",
		Authz:       true,
		Met:         func(c *Context) bool { return c.IsEngagementPartner || c.IsManager },
	}
)
