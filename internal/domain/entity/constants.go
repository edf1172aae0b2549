package entity

// Review status constants for Workpaper, derived from the sign-off chain
const (
	ReviewStatusDraft         = "draft"
	ReviewStatusPendingReview = "pending_review"
	ReviewStatusInReview      = "in_review"
	ReviewStatusApproved      = "approved"
	ReviewStatusLocked        = "locked"
)

// Entity type constants for TransitionLogEntry
const (
	EntityTypeEngagement = "engagement"
)
