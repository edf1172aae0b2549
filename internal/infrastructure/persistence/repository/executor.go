package repository

import (
	"context"
	"database/sql"

	"github.com/Obsidian-Corp/Audit-sub005/internal/infrastructure/persistence/sqlite"
)

// getExecutor returns the context's transaction if one is in flight,
// otherwise the plain database handle
func getExecutor(ctx context.Context, db *sql.DB) sqlite.Executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return db
}
