package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/ovaphlow/pitchfork/service-results-go/internal/user/entity"
)

// ErrDuplicateUsername is returned by Create when the unique constraint on username rejects the row.
var ErrDuplicateUsername = errors.New("duplicate username")

// pq code for unique_violation
const pgUniqueViolation = "23505"

// UserRepo provides data access for users table using sqlx.
// Queries are written with ? placeholders and rebound for the active driver.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// The UNIQUE constraint on username is what actually prevents duplicate accounts.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL
)`
	if r.db.DriverName() == "sqlite3" {
		ddl = `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL
)`
	}
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user row and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (int64, error) {
	q := r.db.Rebind(`INSERT INTO users (username, password) VALUES (?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &u.ID, q, u.Username, u.PasswordDigest); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	return u.ID, nil
}

// GetByUsername fetches by username or returns sql.ErrNoRows.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	q := r.db.Rebind(`SELECT id, username, password FROM users WHERE username = ?`)
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, username); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByCredentials fetches the row matching both username and password digest, or sql.ErrNoRows.
func (r *UserRepo) GetByCredentials(ctx context.Context, username, digest string) (*entity.User, error) {
	q := r.db.Rebind(`SELECT id, username, password FROM users WHERE username = ? AND password = ?`)
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, username, digest); err != nil {
		return nil, err
	}
	return &row, nil
}

// Count returns the number of registered users.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, err
	}
	return n, nil
}

// List returns users ordered by id.
func (r *UserRepo) List(ctx context.Context, limit, offset int64) ([]*entity.User, error) {
	q := r.db.Rebind(`SELECT id, username, password FROM users ORDER BY id LIMIT ? OFFSET ?`)
	rows := []*entity.User{}
	if err := r.db.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
