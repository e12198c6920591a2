// Package records implements the append-only scan log service: buffered
// durable appends, duplicate lookups, range queries, CSV export and the
// optional S3 archive of exports.
package records

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/gabrielslopes/labelcheck/internal/common"
	"github.com/gabrielslopes/labelcheck/internal/dbx"
	"github.com/gabrielslopes/labelcheck/internal/logging"
	"github.com/gabrielslopes/labelcheck/internal/server/config"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
	recordsrepo "github.com/gabrielslopes/labelcheck/internal/server/repositories/records"
	"github.com/gabrielslopes/labelcheck/internal/server/repositories/repomanager"
)

// Service buffers log entries in memory and flushes them to storage in a
// single transaction every flushInterval appends, on query, and on demand.
// A failed flush keeps the buffer intact so no accepted entry is lost.
type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	logger      logging.Logger

	flushInterval int

	mu     sync.Mutex
	buffer []models.RecordEntry
}

func NewService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *Service {
	interval := cfg.RecordFlushInterval
	if interval < 1 {
		interval = 1
	}
	return &Service{
		db:            db,
		repomanager:   rm,
		config:        cfg,
		logger:        logger.With("module", "records"),
		flushInterval: interval,
	}
}

// Append validates the entry, stamps it, and buffers it. Once the buffer
// reaches the flush interval it is written out in one transaction.
func (s *Service) Append(ctx context.Context, entry *models.RecordEntry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer = append(s.buffer, *entry)
	if len(s.buffer) >= s.flushInterval {
		return s.flushLocked(ctx)
	}
	return nil
}

// Exists reports whether the code pair was already recorded on the given
// screen, looking at both the unflushed buffer and storage.
func (s *Service) Exists(ctx context.Context, screen models.Screen, transport, order string) (bool, error) {
	s.mu.Lock()
	for _, e := range s.buffer {
		if e.Screen == screen && e.TransportCode == transport && e.OrderCode == order {
			s.mu.Unlock()
			return true, nil
		}
	}
	s.mu.Unlock()

	repo := s.repomanager.Records(s.db)
	found, err := repo.Exists(ctx, screen, transport, order)
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return found, nil
}

// Query flushes the buffer and returns entries in the inclusive date range,
// ordered ascending by timestamp. From and To are truncated/extended to
// whole days so a same-day range covers the full day.
func (s *Service) Query(ctx context.Context, from, to time.Time, screen models.Screen, divergentOnly bool) ([]models.RecordEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", common.ErrValidation)
	}
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}

	f := recordsrepo.Filter{
		From:          startOfDay(from),
		To:            endOfDay(to),
		Screen:        screen,
		DivergentOnly: divergentOnly,
	}

	repo := s.repomanager.Records(s.db)
	entries, err := repo.Query(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return entries, nil
}

// Flush forces all buffered entries to storage.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

// Pending returns the number of buffered, not yet durable entries.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}

// Close flushes outstanding entries. Called on shutdown.
func (s *Service) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

// flushLocked writes the whole buffer in one transaction. The caller must
// hold s.mu. On failure the buffer is kept for a later retry.
func (s *Service) flushLocked(ctx context.Context) error {
	if len(s.buffer) == 0 {
		return nil
	}

	n := len(s.buffer)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)
		for i := range s.buffer {
			if err := repo.Append(ctx, &s.buffer[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "flush failed, entries kept in buffer", "pending", n, "error", err)
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.buffer = s.buffer[:0]
	s.logger.Debug(ctx, "flushed entries", "count", n)
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
