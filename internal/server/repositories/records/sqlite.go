package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gabrielslopes/labelcheck/internal/dbx"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

// Timestamps are stored as text in the historical data-file format; the
// layout sorts lexicographically, so BETWEEN works on strings.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, e *models.RecordEntry) error {
	query := `INSERT INTO records
			  (recorded_at, user_login, screen, transport_code, order_code, divergent, authorized_by, reason)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		e.RecordedAt.Format(sqliteTimeLayout), e.UserLogin, string(e.Screen),
		e.TransportCode, e.OrderCode,
		boolToInt(e.Divergent), e.AuthorizedBy, e.Reason)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, screen models.Screen, transport, order string) (bool, error) {
	query := `SELECT 1 FROM records
			  WHERE screen = ? AND transport_code = ? AND order_code = ?
			  LIMIT 1`

	var one int
	err := r.db.QueryRowContext(ctx, query, string(screen), transport, order).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) Query(ctx context.Context, f Filter) ([]models.RecordEntry, error) {
	query := `SELECT id, recorded_at, user_login, screen, transport_code, order_code, divergent, authorized_by, reason
			  FROM records
			  WHERE recorded_at BETWEEN ? AND ?`
	args := []any{f.From.Format(sqliteTimeLayout), f.To.Format(sqliteTimeLayout)}

	if f.Screen != "" {
		query += ` AND screen = ?`
		args = append(args, string(f.Screen))
	}
	if f.DivergentOnly {
		query += ` AND divergent = 1`
	}
	query += ` ORDER BY recorded_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.RecordEntry
	for rows.Next() {
		var e models.RecordEntry
		var recordedAt, screen string
		var divergent int
		if err := rows.Scan(&e.ID, &recordedAt, &e.UserLogin, &screen,
			&e.TransportCode, &e.OrderCode, &divergent, &e.AuthorizedBy, &e.Reason); err != nil {
			return nil, err
		}
		e.RecordedAt, err = time.Parse(sqliteTimeLayout, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid recorded_at %q: %w", recordedAt, err)
		}
		e.Screen = models.Screen(screen)
		e.Divergent = divergent != 0
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
