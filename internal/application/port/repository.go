package port

import (
	"context"
	"errors"
	"time"

	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write loses a race: a compare-and-swap
	// found the state already changed, or an insert hit a uniqueness
	// constraint. Callers must reload and re-evaluate; the store is the
	// final arbiter under concurrency.
	ErrConflict = errors.New("write conflict")
)

// EngagementRepository defines persistence operations for Engagement
type EngagementRepository interface {
	Create(ctx context.Context, eng *entity.Engagement) error
	GetByID(ctx context.Context, id int64) (*entity.Engagement, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Engagement, error)

	// UpdateState moves current_state from fromState to toState as a
	// compare-and-swap. Returns ErrConflict when the stored state no longer
	// matches fromState.
	UpdateState(ctx context.Context, id int64, fromState, toState string) error

	// UpdateChecklist replaces the persisted compliance flags
	UpdateChecklist(ctx context.Context, id int64, c *entity.Checklist) error

	SetIssuedAt(ctx context.Context, id int64, t time.Time) error
}

// TransitionLogRepository defines persistence operations for the
// append-only transition audit trail
type TransitionLogRepository interface {
	Append(ctx context.Context, entry *entity.TransitionLogEntry) error
	GetByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.TransitionLogEntry, error)
}

// WorkpaperRepository defines persistence operations for Workpaper
type WorkpaperRepository interface {
	Create(ctx context.Context, wp *entity.Workpaper) error
	GetByID(ctx context.Context, id int64) (*entity.Workpaper, error)
	GetByEngagementID(ctx context.Context, engagementID int64) ([]*entity.Workpaper, error)
	UpdateContent(ctx context.Context, id int64, title, content string) error

	// UpdateReviewStatus writes the derived status and lock fields. A nil
	// lockedAt clears the lock.
	UpdateReviewStatus(ctx context.Context, id int64, status string, lockedAt *time.Time, lockedBy string) error

	// CountByEngagement returns the total number of workpapers and how many
	// of them are locked (partner-signed)
	CountByEngagement(ctx context.Context, engagementID int64) (total, locked int, err error)
}

// SignoffRepository defines persistence operations for WorkpaperSignoff.
// Rows are append/delete only; Create must surface a uniqueness violation
// on (workpaper_id, signoff_type) as ErrConflict.
type SignoffRepository interface {
	Create(ctx context.Context, s *entity.WorkpaperSignoff) error
	GetByID(ctx context.Context, id int64) (*entity.WorkpaperSignoff, error)
	GetByWorkpaperID(ctx context.Context, workpaperID int64) ([]*entity.WorkpaperSignoff, error)
	Delete(ctx context.Context, id int64) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
