package session

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps sessions in the `sessions` table.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureTable creates the sessions table and its login_id index if missing.
func (s *SQLStore) EnsureTable(ctx context.Context) error {
	ddl := []string{`
CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  login_id BIGINT NOT NULL,
  login_type TEXT NOT NULL DEFAULT 'login',
  device TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL,
  expires_at TIMESTAMPTZ
)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_login_id ON sessions (login_id)`,
	}
	if s.db.DriverName() == "sqlite3" {
		ddl[0] = `
CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  login_id INTEGER NOT NULL,
  login_type TEXT NOT NULL DEFAULT 'login',
  device TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL,
  expires_at TIMESTAMP
)`
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

const insertSession = `INSERT INTO sessions (token, login_id, login_type, device, created_at, expires_at)
	VALUES (:token, :login_id, :login_type, :device, :created_at, :expires_at)`

func (s *SQLStore) Save(ctx context.Context, sess *Session) error {
	_, err := s.db.NamedExecContext(ctx, insertSession, sess)
	return err
}

// Replace deletes the login's sessions and inserts sess in one transaction.
// On postgres a transaction-scoped advisory lock on the login id serializes
// concurrent replacements so only one row survives.
func (s *SQLStore) Replace(ctx context.Context, sess *Session) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if s.db.DriverName() == "postgres" {
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, sess.LoginID); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sessions WHERE login_id = ?`), sess.LoginID); err != nil {
		return err
	}
	if _, err = tx.NamedExecContext(ctx, insertSession, sess); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) Get(ctx context.Context, token string) (*Session, error) {
	q := s.db.Rebind(`SELECT token, login_id, login_type, device, created_at, expires_at FROM sessions WHERE token = ?`)
	var row Session
	if err := s.db.GetContext(ctx, &row, q, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (s *SQLStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE token = ?`), token)
	return err
}

func (s *SQLStore) DeleteByLoginID(ctx context.Context, loginID int64) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE login_id = ?`), loginID)
	return err
}
