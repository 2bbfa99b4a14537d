package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

type countingLookup struct {
	user  core.User
	calls int
}

func (l *countingLookup) Get(_ context.Context, id uuid.UUID) (core.User, error) {
	l.calls++
	if id != l.user.ID {
		return core.User{}, core.NotFound("user", id)
	}
	return l.user, nil
}

func TestCachedLookup(t *testing.T) {
	inner := &countingLookup{user: core.User{ID: uuid.New(), IsActive: true}}
	lookup := NewCachedLookup(inner, 8, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u, err := lookup.Get(ctx, inner.user.ID)
		require.NoError(t, err)
		assert.Equal(t, inner.user.ID, u.ID)
	}
	assert.Equal(t, 1, inner.calls)

	lookup.Forget(inner.user.ID)
	_, err := lookup.Get(ctx, inner.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	missing := uuid.New()
	for i := 0; i < 2; i++ {
		_, err := lookup.Get(ctx, missing)
		assert.True(t, core.IsNotFound(err))
	}
	assert.Equal(t, 4, inner.calls, "failures are not cached")
}
