package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-results-go/internal/page"
	"github.com/ovaphlow/pitchfork/service-results-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-results-go/internal/user/repo"
)

// Store is the slice of the user repository the service needs. *userrepo.UserRepo satisfies it.
type Store interface {
	Create(ctx context.Context, u *entity.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByCredentials(ctx context.Context, username, digest string) (*entity.User, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int64) ([]*entity.User, error)
}

// UserService holds the login and registration rules.
type UserService struct {
	repo   Store
	hasher PasswordHasher
}

// NewUserService uses r when given, otherwise a repo over db.
func NewUserService(db *sqlx.DB, r Store, hasher PasswordHasher) *UserService {
	if r == nil {
		r = userrepo.NewUserRepo(db)
	}
	if hasher == nil {
		hasher = MD5Hasher{}
	}
	return &UserService{repo: r, hasher: hasher}
}

var (
	// ErrNotFound covers both an unknown username and a wrong password.
	ErrNotFound      = errors.New("user not found or credentials incorrect")
	ErrAlreadyExists = errors.New("user already exists")
)

// Login returns the user whose username and password digest both match.
func (s *UserService) Login(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.repo.GetByCredentials(ctx, username, s.hasher.Hash(password))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}
	return u, nil
}

// Register creates a user unless the username is already taken.
// The lookup only fails early; the unique constraint in the store decides concurrent attempts.
func (s *UserService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	_, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, ErrAlreadyExists
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("register lookup: %w", err)
	}

	u := &entity.User{Username: username, PasswordDigest: s.hasher.Hash(password)}
	if _, err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrDuplicateUsername) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("register insert: %w", err)
	}
	return u, nil
}

// ListUsers returns one page of users. currentPage is 1-based; 0 is read as the first page.
func (s *UserService) ListUsers(ctx context.Context, currentPage, pageSize int64) (*page.Result[entity.UserView], error) {
	if _, err := page.Of[entity.UserView](currentPage, pageSize, 0, nil); err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	offset := int64(0)
	if currentPage > 1 {
		// no offset that large is representable, so the page is past the last row
		if currentPage-1 > math.MaxInt64/pageSize {
			return page.Of[entity.UserView](currentPage, pageSize, total, nil)
		}
		offset = (currentPage - 1) * pageSize
	}
	rows, err := s.repo.List(ctx, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	views := make([]entity.UserView, 0, len(rows))
	for _, u := range rows {
		views = append(views, u.View())
	}
	return page.Of(currentPage, pageSize, total, views)
}

func validateCredentials(username, password string) error {
	if username == "" {
		return &page.ValidationError{Field: "username", Value: username}
	}
	if password == "" {
		return &page.ValidationError{Field: "password", Value: password}
	}
	return nil
}
