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

// EngagementRepository implements port.EngagementRepository
type EngagementRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *sql.DB, logger *zap.Logger) port.EngagementRepository {
	return &EngagementRepository{
		db:     db,
		logger: logger,
	}
}

const engagementColumns = `
	id, client_name, title, period_end, current_state,
	partner_user_id, manager_user_id,
	independence_confirmed, client_accepted, engagement_letter_signed,
	planning_memo_approved, risk_assessment_complete, materiality_set,
	all_procedures_complete, review_notes_cleared, wrap_up_complete,
	eqcr_complete, report_approved,
	issued_at, created_at, updated_at`

// Create creates a new engagement
func (r *EngagementRepository) Create(ctx context.Context, eng *entity.Engagement) error {
	query := `
		INSERT INTO engagements (
			client_name, title, period_end, current_state,
			partner_user_id, manager_user_id
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		eng.ClientName,
		eng.Title,
		eng.PeriodEnd,
		eng.CurrentState,
		eng.PartnerUserID,
		eng.ManagerUserID,
	)
	if err != nil {
		r.logger.Error("Failed to create engagement", zap.Error(err))
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	eng.ID = id
	return nil
}

// GetByID retrieves an engagement by ID
func (r *EngagementRepository) GetByID(ctx context.Context, id int64) (*entity.Engagement, error) {
	query := `SELECT` + engagementColumns + `
		FROM engagements WHERE id = ?`

	eng, err := r.scanEngagement(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get engagement by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get engagement: %w", err)
	}
	return eng, nil
}

// List retrieves a paginated list of engagements, newest first
func (r *EngagementRepository) List(ctx context.Context, limit, offset int) ([]*entity.Engagement, error) {
	query := `SELECT` + engagementColumns + `
		FROM engagements
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list engagements", zap.Error(err))
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	defer rows.Close()

	var engagements []*entity.Engagement
	for rows.Next() {
		eng, err := r.scanEngagement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan engagement: %w", err)
		}
		engagements = append(engagements, eng)
	}
	return engagements, rows.Err()
}

// UpdateState moves current_state as a compare-and-swap. Zero affected
// rows means the stored state no longer matches the snapshot the caller
// evaluated against.
func (r *EngagementRepository) UpdateState(ctx context.Context, id int64, fromState, toState string) error {
	query := `
		UPDATE engagements
		SET current_state = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_state = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, toState, id, fromState)
	if err != nil {
		r.logger.Error("Failed to update engagement state", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update engagement state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrConflict
	}
	return nil
}

// UpdateChecklist replaces the persisted compliance flags
func (r *EngagementRepository) UpdateChecklist(ctx context.Context, id int64, c *entity.Checklist) error {
	query := `
		UPDATE engagements SET
			independence_confirmed = ?,
			client_accepted = ?,
			engagement_letter_signed = ?,
			planning_memo_approved = ?,
			risk_assessment_complete = ?,
			materiality_set = ?,
			all_procedures_complete = ?,
			review_notes_cleared = ?,
			wrap_up_complete = ?,
			eqcr_complete = ?,
			report_approved = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		c.IndependenceConfirmed,
		c.ClientAccepted,
		c.EngagementLetterSigned,
		c.PlanningMemoApproved,
		c.RiskAssessmentComplete,
		c.MaterialitySet,
		c.AllProceduresComplete,
		c.ReviewNotesCleared,
		c.WrapUpComplete,
		c.EQCRComplete,
		c.ReportApproved,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to update checklist", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update checklist: %w", err)
	}
	return nil
}

// SetIssuedAt stamps the report issue time
func (r *EngagementRepository) SetIssuedAt(ctx context.Context, id int64, t time.Time) error {
	query := `UPDATE engagements SET issued_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, t, id)
	if err != nil {
		r.logger.Error("Failed to set issued_at", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set issued_at: %w", err)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *EngagementRepository) scanEngagement(row scanner) (*entity.Engagement, error) {
	var eng entity.Engagement
	var issuedAt sql.NullTime

	err := row.Scan(
		&eng.ID,
		&eng.ClientName,
		&eng.Title,
		&eng.PeriodEnd,
		&eng.CurrentState,
		&eng.PartnerUserID,
		&eng.ManagerUserID,
		&eng.Checklist.IndependenceConfirmed,
		&eng.Checklist.ClientAccepted,
		&eng.Checklist.EngagementLetterSigned,
		&eng.Checklist.PlanningMemoApproved,
		&eng.Checklist.RiskAssessmentComplete,
		&eng.Checklist.MaterialitySet,
		&eng.Checklist.AllProceduresComplete,
		&eng.Checklist.ReviewNotesCleared,
		&eng.Checklist.WrapUpComplete,
		&eng.Checklist.EQCRComplete,
		&eng.Checklist.ReportApproved,
		&issuedAt,
		&eng.CreatedAt,
		&eng.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if issuedAt.Valid {
		eng.IssuedAt = &issuedAt.Time
	}
	return &eng, nil
}
