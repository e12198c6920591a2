// Package records contains the storage layer for the append-only scan log.
package records

import (
	"context"
	"time"

	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

// Filter restricts a log query. From and To are inclusive timestamp bounds;
// Screen narrows to one entry flow when set; DivergentOnly keeps only
// supervisor-released entries.
type Filter struct {
	From          time.Time
	To            time.Time
	Screen        models.Screen
	DivergentOnly bool
}

// Repository is the append-only log contract. Entries are never updated or
// deleted; Query returns matches ordered ascending by timestamp.
type Repository interface {
	Append(ctx context.Context, entry *models.RecordEntry) error
	Exists(ctx context.Context, screen models.Screen, transport, order string) (bool, error)
	Query(ctx context.Context, f Filter) ([]models.RecordEntry, error)
}
