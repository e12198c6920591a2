package repomanager

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/gabrielslopes/labelcheck/internal/dbx"
	litemigrations "github.com/gabrielslopes/labelcheck/internal/server/migrations/sqlite"
	"github.com/gabrielslopes/labelcheck/internal/server/repositories/records"
	"github.com/gabrielslopes/labelcheck/internal/server/repositories/users"
)

// SQLiteRepositoryManager vends SQLite-backed repository implementations
// and runs the embedded goose migrations. This is the file-based backend
// used by single-station deployments.
type SQLiteRepositoryManager struct{}

// NewSQLiteRepositoryManager constructs a SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager() (*SQLiteRepositoryManager, error) {
	return &SQLiteRepositoryManager{}, nil
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

// Records returns a records.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return records.NewSQLiteRepository(db)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection. Data files written by older
// releases gain the divergence columns here, with safe defaults.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(litemigrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
