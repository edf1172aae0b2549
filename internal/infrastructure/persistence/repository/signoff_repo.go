package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/port"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/entity"
)

// SignoffRepository implements port.SignoffRepository. The
// (workpaper_id, signoff_type) uniqueness constraint in the schema is the
// authoritative guard against two users racing for the same sign-off slot;
// a violation is reported as port.ErrConflict, never swallowed.
type SignoffRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSignoffRepository creates a new sign-off repository
func NewSignoffRepository(db *sql.DB, logger *zap.Logger) port.SignoffRepository {
	return &SignoffRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a sign-off row
func (r *SignoffRepository) Create(ctx context.Context, s *entity.WorkpaperSignoff) error {
	query := `
		INSERT INTO workpaper_signoffs (
			workpaper_id, user_id, signoff_type, signed_at,
			comments, signature_hash, user_agent
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		s.WorkpaperID,
		s.UserID,
		s.SignoffType,
		s.SignedAt,
		s.Comments,
		s.SignatureHash,
		s.UserAgent,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return port.ErrConflict
		}
		r.logger.Error("Failed to create sign-off", zap.Error(err))
		return fmt.Errorf("failed to create sign-off: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	s.ID = id
	return nil
}

// GetByID retrieves a sign-off by ID
func (r *SignoffRepository) GetByID(ctx context.Context, id int64) (*entity.WorkpaperSignoff, error) {
	query := `
		SELECT id, workpaper_id, user_id, signoff_type, signed_at,
			comments, signature_hash, user_agent
		FROM workpaper_signoffs
		WHERE id = ?
	`

	s, err := r.scanSignoff(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get sign-off by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get sign-off: %w", err)
	}
	return s, nil
}

// GetByWorkpaperID retrieves all sign-offs for a workpaper, oldest first
func (r *SignoffRepository) GetByWorkpaperID(ctx context.Context, workpaperID int64) ([]*entity.WorkpaperSignoff, error) {
	query := `
		SELECT id, workpaper_id, user_id, signoff_type, signed_at,
			comments, signature_hash, user_agent
		FROM workpaper_signoffs
		WHERE workpaper_id = ?
		ORDER BY signed_at ASC, id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, workpaperID)
	if err != nil {
		r.logger.Error("Failed to list sign-offs",
			zap.Int64("workpaper_id", workpaperID), zap.Error(err))
		return nil, fmt.Errorf("failed to list sign-offs: %w", err)
	}
	defer rows.Close()

	var signoffs []*entity.WorkpaperSignoff
	for rows.Next() {
		s, err := r.scanSignoff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sign-off: %w", err)
		}
		signoffs = append(signoffs, s)
	}
	return signoffs, rows.Err()
}

// Delete removes a sign-off row (revocation only)
func (r *SignoffRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM workpaper_signoffs WHERE id = ?`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete sign-off", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete sign-off: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("sign-off %d: %w", id, port.ErrNotFound)
	}
	return nil
}

func (r *SignoffRepository) scanSignoff(row scanner) (*entity.WorkpaperSignoff, error) {
	var s entity.WorkpaperSignoff
	var comments, userAgent sql.NullString

	err := row.Scan(
		&s.ID,
		&s.WorkpaperID,
		&s.UserID,
		&s.SignoffType,
		&s.SignedAt,
		&comments,
		&s.SignatureHash,
		&userAgent,
	)
	if err != nil {
		return nil, err
	}

	if comments.Valid {
		s.Comments = comments.String
	}
	if userAgent.Valid {
		s.UserAgent = userAgent.String
	}
	return &s, nil
}
