package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gabrielslopes/labelcheck/internal/common"
	"github.com/gabrielslopes/labelcheck/internal/dbx"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

// PostgreSQL "unique_violation".
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {

	query :=
		`INSERT INTO users (id, login, name, role, salt, password_hash, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Login, user.Name, string(user.Role),
		user.SaltHex, user.HashHex, user.Active, user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrDuplicateLogin
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query :=
		`SELECT id, login, name, role, salt, password_hash, active, created_at FROM users
		 WHERE login = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, login, name, role, salt, password_hash, active, created_at FROM users
		 WHERE id = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var role string
	err := row.Scan(&user.ID, &user.Login, &user.Name, &role,
		&user.SaltHex, &user.HashHex, &user.Active, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.Role = models.Role(role)

	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context, search string) ([]models.User, error) {
	query :=
		`SELECT id, login, name, role, salt, password_hash, active, created_at FROM users
		 WHERE login ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%'
		 ORDER BY login
		 `
	rows, err := r.db.QueryContext(ctx, query, search)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var u models.User
		var role string
		if err := rows.Scan(&u.ID, &u.Login, &u.Name, &role,
			&u.SaltHex, &u.HashHex, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, name string, role models.Role, active bool) error {
	query := `UPDATE users SET name = $2, role = $3, active = $4 WHERE id = $1`
	return r.execExpectOne(ctx, query, id, name, string(role), active)
}

func (r *PostgresRepository) UpdateCredentials(ctx context.Context, id string, saltHex, hashHex string) error {
	query := `UPDATE users SET salt = $2, password_hash = $3 WHERE id = $1`
	return r.execExpectOne(ctx, query, id, saltHex, hashHex)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	return r.execExpectOne(ctx, query, id)
}

func (r *PostgresRepository) execExpectOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) HasActiveAdmin(ctx context.Context) (bool, error) {
	query := `SELECT 1 FROM users WHERE role = 'admin' AND active LIMIT 1`

	var one int
	err := r.db.QueryRowContext(ctx, query).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}
