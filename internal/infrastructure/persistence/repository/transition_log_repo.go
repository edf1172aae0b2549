package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/port"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/entity"
)

// TransitionLogRepository implements port.TransitionLogRepository. The
// table is append-only; no update or delete statements exist here on
// purpose.
type TransitionLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTransitionLogRepository creates a new transition log repository
func NewTransitionLogRepository(db *sql.DB, logger *zap.Logger) port.TransitionLogRepository {
	return &TransitionLogRepository{
		db:     db,
		logger: logger,
	}
}

// Append writes one transition record
func (r *TransitionLogRepository) Append(ctx context.Context, entry *entity.TransitionLogEntry) error {
	query := `
		INSERT INTO transition_log (
			entity_type, entity_id, from_state, to_state,
			action, performed_by, performed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entry.EntityType,
		entry.EntityID,
		entry.FromState,
		entry.ToState,
		entry.Action,
		entry.PerformedBy,
		entry.PerformedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append transition log entry", zap.Error(err))
		return fmt.Errorf("failed to append transition log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// GetByEntity retrieves an entity's transition history, oldest first
func (r *TransitionLogRepository) GetByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.TransitionLogEntry, error) {
	query := `
		SELECT id, entity_type, entity_id, from_state, to_state,
			action, performed_by, performed_at
		FROM transition_log
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY performed_at ASC, id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		r.logger.Error("Failed to get transition log",
			zap.String("entity_type", entityType),
			zap.Int64("entity_id", entityID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get transition log: %w", err)
	}
	defer rows.Close()

	var entries []*entity.TransitionLogEntry
	for rows.Next() {
		var e entity.TransitionLogEntry
		if err := rows.Scan(
			&e.ID,
			&e.EntityType,
			&e.EntityID,
			&e.FromState,
			&e.ToState,
			&e.Action,
			&e.PerformedBy,
			&e.PerformedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transition log entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
