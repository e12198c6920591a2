package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gabrielslopes/labelcheck/internal/dbx"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.RecordEntry) error {
	query :=
		`INSERT INTO records
		 (recorded_at, user_login, screen, transport_code, order_code, divergent, authorized_by, reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		e.RecordedAt, e.UserLogin, string(e.Screen),
		e.TransportCode, e.OrderCode,
		e.Divergent, e.AuthorizedBy, e.Reason).Scan(&e.ID)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, screen models.Screen, transport, order string) (bool, error) {
	query :=
		`SELECT 1 FROM records
		 WHERE screen = $1 AND transport_code = $2 AND order_code = $3
		 LIMIT 1
		 `

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

func (r *PostgresRepository) Query(ctx context.Context, f Filter) ([]models.RecordEntry, error) {
	query :=
		`SELECT id, recorded_at, user_login, screen, transport_code, order_code, divergent, authorized_by, reason
		 FROM records
		 WHERE recorded_at BETWEEN $1 AND $2
		 `
	args := []any{f.From, f.To}

	if f.Screen != "" {
		args = append(args, string(f.Screen))
		query += fmt.Sprintf(" AND screen = $%d", len(args))
	}
	if f.DivergentOnly {
		query += " AND divergent"
	}
	query += " ORDER BY recorded_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.RecordEntry
	for rows.Next() {
		var e models.RecordEntry
		var screen string
		if err := rows.Scan(&e.ID, &e.RecordedAt, &e.UserLogin, &screen,
			&e.TransportCode, &e.OrderCode, &e.Divergent, &e.AuthorizedBy, &e.Reason); err != nil {
			return nil, err
		}
		e.Screen = models.Screen(screen)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
