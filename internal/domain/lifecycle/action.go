package lifecycle

// Action represents a request to move an engagement forward in its lifecycle
type Action string

const (
	ActionSubmitForAcceptance    Action = "submit_for_acceptance"
	ActionApproveAcceptance      Action = "approve_acceptance"
	ActionBeginPlanning          Action = "begin_planning"
	ActionCompletePlanning       Action = "complete_planning"
	ActionApprovePlanning        Action = "approve_planning"
	ActionCompleteFieldwork      Action = "complete_fieldwork"
	ActionCompleteReview         Action = "complete_review"
	ActionBeginReporting         Action = "begin_reporting"
	ActionSubmitForPartnerReview Action = "submit_for_partner_review"
	ActionIssueReport            Action = "issue_report"
	ActionArchiveEngagement      Action = "archive_engagement"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
