package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-results-go/internal/testutil"
	"github.com/ovaphlow/pitchfork/service-results-go/internal/user/entity"
)

func newRepo(t *testing.T) *UserRepo {
	t.Helper()
	r := NewUserRepo(testutil.OpenSQLite(t))
	require.NoError(t, r.EnsureTable(context.Background()))
	// idempotent
	require.NoError(t, r.EnsureTable(context.Background()))
	return r
}

func TestUserRepo_CreateAndQueries(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	u := &entity.User{Username: "alice", PasswordDigest: "d1"}
	id, err := r.Create(ctx, u)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, u.ID)

	got, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, *u, *got)

	got, err = r.GetByCredentials(ctx, "alice", "d1")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = r.GetByCredentials(ctx, "alice", "d2")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = r.GetByCredentials(ctx, "bob", "d1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestUserRepo_UsernameIsCaseSensitive(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, &entity.User{Username: "alice", PasswordDigest: "d"})
	require.NoError(t, err)

	_, err = r.GetByUsername(ctx, "Alice")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = r.Create(ctx, &entity.User{Username: "Alice", PasswordDigest: "d"})
	assert.NoError(t, err)
}

func TestUserRepo_UniqueConstraint(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, &entity.User{Username: "alice", PasswordDigest: "d1"})
	require.NoError(t, err)
	_, err = r.Create(ctx, &entity.User{Username: "alice", PasswordDigest: "d2"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserRepo_CountAndList(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := r.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	for i := 0; i < 5; i++ {
		_, err := r.Create(ctx, &entity.User{Username: fmt.Sprintf("user%d", i), PasswordDigest: "d"})
		require.NoError(t, err)
	}
	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	list, err = r.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "user2", list[0].Username)
	assert.Equal(t, "user3", list[1].Username)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
