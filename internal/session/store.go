package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrSessionNotFound is returned by stores when no session matches the token.
var ErrSessionNotFound = errors.New("session not found")

// Session binds an opaque token to a login id.
type Session struct {
	Token     string     `db:"token"`
	LoginID   int64      `db:"login_id"`
	LoginType string     `db:"login_type"`
	Device    string     `db:"device"`
	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt *time.Time `db:"expires_at"`
}

// Expired reports whether the session has a deadline at or before now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Store persists token to login-id bindings.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByLoginID(ctx context.Context, loginID int64) error
}

// Replacer is implemented by stores that can swap every session of a login
// for a new one atomically. Issue prefers it over DeleteByLoginID then Save.
type Replacer interface {
	Replace(ctx context.Context, s *Session) error
}

// NewStore builds the store named by cfg.Store. The db store creates its table.
func NewStore(ctx context.Context, cfg Config, db *sqlx.DB) (Store, error) {
	switch cfg.Store {
	case "", StoreMemory:
		return NewMemoryStore(), nil
	case StoreDB:
		if db == nil {
			return nil, errors.New("db session store requires a database")
		}
		s := NewSQLStore(db)
		if err := s.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("ensure sessions table: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	byToken map[string]Session
	byLogin map[int64]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byToken: make(map[string]Session),
		byLogin: make(map[int64]map[string]struct{}),
	}
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[s.Token] = *s
	tokens, ok := m.byLogin[s.LoginID]
	if !ok {
		tokens = make(map[string]struct{})
		m.byLogin[s.LoginID] = tokens
	}
	tokens[s.Token] = struct{}{}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byToken[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[token]
	if !ok {
		return nil
	}
	delete(m.byToken, token)
	if tokens, ok := m.byLogin[s.LoginID]; ok {
		delete(tokens, token)
		if len(tokens) == 0 {
			delete(m.byLogin, s.LoginID)
		}
	}
	return nil
}

func (m *MemoryStore) DeleteByLoginID(_ context.Context, loginID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropLogin(loginID)
	return nil
}

// Replace drops the login's sessions and stores s under a single lock.
func (m *MemoryStore) Replace(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropLogin(s.LoginID)
	m.byToken[s.Token] = *s
	m.byLogin[s.LoginID] = map[string]struct{}{s.Token: {}}
	return nil
}

func (m *MemoryStore) dropLogin(loginID int64) {
	for token := range m.byLogin[loginID] {
		delete(m.byToken, token)
	}
	delete(m.byLogin, loginID)
}
