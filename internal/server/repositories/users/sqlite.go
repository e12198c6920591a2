package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"

	"github.com/gabrielslopes/labelcheck/internal/common"
	"github.com/gabrielslopes/labelcheck/internal/dbx"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

// SQLite timestamps are stored as text in the historical data-file format.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLITE_CONSTRAINT_UNIQUE / SQLITE_CONSTRAINT_PRIMARYKEY extended codes.
const (
	sqliteConstraintUnique     = 2067
	sqliteConstraintPrimaryKey = 1555
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqliteConstraintUnique || serr.Code() == sqliteConstraintPrimaryKey
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, login, name, role, salt, password_hash, active, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Login, user.Name, string(user.Role),
		user.SaltHex, user.HashHex, boolToInt(user.Active),
		user.CreatedAt.Format(sqliteTimeLayout))

	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicateLogin
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT id, login, name, role, salt, password_hash, active, created_at
			  FROM users WHERE login = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, login))
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, login, name, role, salt, password_hash, active, created_at
			  FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var role, createdAt string
	var active int

	err := row.Scan(&user.ID, &user.Login, &user.Name, &role,
		&user.SaltHex, &user.HashHex, &active, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Role = models.Role(role)
	user.Active = active != 0
	user.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	return user, nil
}

func (r *SQLiteRepository) List(ctx context.Context, search string) ([]models.User, error) {
	query := `SELECT id, login, name, role, salt, password_hash, active, created_at
			  FROM users
			  WHERE login LIKE '%' || ? || '%' OR name LIKE '%' || ? || '%'
			  ORDER BY login`

	rows, err := r.db.QueryContext(ctx, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var u models.User
		var role, createdAt string
		var active int
		if err := rows.Scan(&u.ID, &u.Login, &u.Name, &role,
			&u.SaltHex, &u.HashHex, &active, &createdAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		u.Active = active != 0
		u.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, name string, role models.Role, active bool) error {
	query := `UPDATE users SET name = ?, role = ?, active = ? WHERE id = ?`
	return r.execExpectOne(ctx, query, name, string(role), boolToInt(active), id)
}

func (r *SQLiteRepository) UpdateCredentials(ctx context.Context, id string, saltHex, hashHex string) error {
	query := `UPDATE users SET salt = ?, password_hash = ? WHERE id = ?`
	return r.execExpectOne(ctx, query, saltHex, hashHex, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = ?`
	return r.execExpectOne(ctx, query, id)
}

func (r *SQLiteRepository) execExpectOne(ctx context.Context, query string, args ...any) error {
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

func (r *SQLiteRepository) HasActiveAdmin(ctx context.Context) (bool, error) {
	query := `SELECT 1 FROM users WHERE role = 'admin' AND active = 1 LIMIT 1`

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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
