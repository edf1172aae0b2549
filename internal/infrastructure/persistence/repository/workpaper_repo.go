package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/port"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/entity"
)

// WorkpaperRepository implements port.WorkpaperRepository
type WorkpaperRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkpaperRepository creates a new workpaper repository
func NewWorkpaperRepository(db *sql.DB, logger *zap.Logger) port.WorkpaperRepository {
	return &WorkpaperRepository{
		db:     db,
		logger: logger,
	}
}

const workpaperColumns = `
	id, engagement_id, reference, title, content, review_status,
	locked_at, locked_by, created_at, updated_at`

// Create creates a new workpaper
func (r *WorkpaperRepository) Create(ctx context.Context, wp *entity.Workpaper) error {
	query := `
		INSERT INTO workpapers (
			engagement_id, reference, title, content, review_status
		) VALUES (?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		wp.EngagementID,
		wp.Reference,
		wp.Title,
		wp.Content,
		wp.ReviewStatus,
	)
	if err != nil {
		r.logger.Error("Failed to create workpaper", zap.Error(err))
		return fmt.Errorf("failed to create workpaper: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	wp.ID = id
	return nil
}

// GetByID retrieves a workpaper by ID
func (r *WorkpaperRepository) GetByID(ctx context.Context, id int64) (*entity.Workpaper, error) {
	query := `SELECT` + workpaperColumns + `
		FROM workpapers WHERE id = ?`

	wp, err := r.scanWorkpaper(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workpaper by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get workpaper: %w", err)
	}
	return wp, nil
}

// GetByEngagementID retrieves all workpapers for an engagement
func (r *WorkpaperRepository) GetByEngagementID(ctx context.Context, engagementID int64) ([]*entity.Workpaper, error) {
	query := `SELECT` + workpaperColumns + `
		FROM workpapers
		WHERE engagement_id = ?
		ORDER BY reference ASC, id ASC`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, engagementID)
	if err != nil {
		r.logger.Error("Failed to list workpapers",
			zap.Int64("engagement_id", engagementID), zap.Error(err))
		return nil, fmt.Errorf("failed to list workpapers: %w", err)
	}
	defer rows.Close()

	var workpapers []*entity.Workpaper
	for rows.Next() {
		wp, err := r.scanWorkpaper(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workpaper: %w", err)
		}
		workpapers = append(workpapers, wp)
	}
	return workpapers, rows.Err()
}

// UpdateContent replaces a workpaper's title and content
func (r *WorkpaperRepository) UpdateContent(ctx context.Context, id int64, title, content string) error {
	query := `
		UPDATE workpapers
		SET title = ?, content = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, title, content, id)
	if err != nil {
		r.logger.Error("Failed to update workpaper content", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update workpaper content: %w", err)
	}
	return nil
}

// UpdateReviewStatus writes the derived status and lock fields
func (r *WorkpaperRepository) UpdateReviewStatus(ctx context.Context, id int64, status string, lockedAt *time.Time, lockedBy string) error {
	query := `
		UPDATE workpapers
		SET review_status = ?, locked_at = ?, locked_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	var lockedAtVal interface{}
	if lockedAt != nil {
		lockedAtVal = *lockedAt
	}

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, status, lockedAtVal, lockedBy, id)
	if err != nil {
		r.logger.Error("Failed to update review status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update review status: %w", err)
	}
	return nil
}

// CountByEngagement returns total and locked workpaper counts
func (r *WorkpaperRepository) CountByEngagement(ctx context.Context, engagementID int64) (total, locked int, err error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN review_status = ? THEN 1 ELSE 0 END), 0)
		FROM workpapers
		WHERE engagement_id = ?
	`

	err = getExecutor(ctx, r.db).QueryRowContext(ctx, query,
		entity.ReviewStatusLocked, engagementID).Scan(&total, &locked)
	if err != nil {
		r.logger.Error("Failed to count workpapers",
			zap.Int64("engagement_id", engagementID), zap.Error(err))
		return 0, 0, fmt.Errorf("failed to count workpapers: %w", err)
	}
	return total, locked, nil
}

func (r *WorkpaperRepository) scanWorkpaper(row scanner) (*entity.Workpaper, error) {
	var wp entity.Workpaper
	var lockedAt sql.NullTime
	var lockedBy sql.NullString

	err := row.Scan(
		&wp.ID,
		&wp.EngagementID,
		&wp.Reference,
		&wp.Title,
		&wp.Content,
		&wp.ReviewStatus,
		&lockedAt,
		&lockedBy,
		&wp.CreatedAt,
		&wp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lockedAt.Valid {
		wp.LockedAt = &lockedAt.Time
	}
	if lockedBy.Valid {
		wp.LockedBy = lockedBy.String
	}
	return &wp, nil
}
