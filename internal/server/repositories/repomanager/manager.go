// Package repomanager vends backend-specific repository implementations and
// exposes a schema migration hook. The backend is selected once at startup;
// everything above this package is backend-agnostic.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gabrielslopes/labelcheck/internal/dbx"
	"github.com/gabrielslopes/labelcheck/internal/server/config"
	"github.com/gabrielslopes/labelcheck/internal/server/repositories/records"
	"github.com/gabrielslopes/labelcheck/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// runs schema migrations for its backend.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}

// NewManager returns the RepositoryManager for the configured backend.
func NewManager(backend string) (RepositoryManager, error) {
	switch backend {
	case config.BackendPostgres:
		return NewPostgresRepositoryManager()
	case config.BackendSQLite:
		return NewSQLiteRepositoryManager()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
