package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// CachedLookup memoizes successful user lookups for a short TTL so every
// request does not hit the users table. Deactivation and staff changes take
// effect once the entry expires.
type CachedLookup struct {
	next  UserLookup
	users *cache.LRU[uuid.UUID, core.User]
}

func NewCachedLookup(next UserLookup, size int, ttl time.Duration) *CachedLookup {
	return &CachedLookup{
		next:  next,
		users: cache.NewLRU[uuid.UUID, core.User](size, ttl),
	}
}

func (c *CachedLookup) Get(ctx context.Context, id uuid.UUID) (core.User, error) {
	if u, ok := c.users.Get(id); ok {
		return u, nil
	}
	u, err := c.next.Get(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	c.users.Set(id, u)
	return u, nil
}

// Forget drops id so its next lookup reads through.
func (c *CachedLookup) Forget(id uuid.UUID) {
	c.users.Delete(id)
}
