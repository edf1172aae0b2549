package entity

import "time"

// Workpaper is a unit of audit evidence subject to the sequential sign-off
// chain. ReviewStatus and the lock fields are derived from the sign-off
// rows and written only by the sign-off orchestrator.
type Workpaper struct {
	ID           int64      `json:"id"`
	EngagementID int64      `json:"engagement_id"`
	Reference    string     `json:"reference"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	ReviewStatus string     `json:"review_status"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	LockedBy     string     `json:"locked_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// WorkpaperSignoff is one recorded approval in a workpaper's chain. Rows
// are appended and deleted (by revocation), never updated in place; at most
// one row per (workpaper, type) exists at a time, enforced by the storage
// uniqueness constraint.
type WorkpaperSignoff struct {
	ID            int64     `json:"id"`
	WorkpaperID   int64     `json:"workpaper_id"`
	UserID        string    `json:"user_id"`
	SignoffType   string    `json:"signoff_type"`
	SignedAt      time.Time `json:"signed_at"`
	Comments      string    `json:"comments,omitempty"`
	SignatureHash string    `json:"signature_hash"`
	UserAgent     string    `json:"user_agent,omitempty"`
}
