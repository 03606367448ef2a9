// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
	"account_backend/internal/platform/metrics"
)

// Lookup outcomes recorded in metrics.UserCacheLookupsTotal.
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeCorrupt = "corrupt"
)

// CachingUserRepository decorates a UserRepository with a Redis read-through cache on FindByID.
// FindByEmail is never cached: login must always see the stored password hash.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
// A nil rdb turns the decorator into a pass-through.
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the user and primes the cache with the created record.
func (c *CachingUserRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	created, err := c.inner.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil && created != nil {
		c.store(ctx, created)
	}
	return created, nil
}

// FindByEmail always goes to the underlying repository.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.FindByEmail(ctx, email)
}

// FindByID checks the cache first, then falls back to the underlying repository.
// Not-found results are not cached.
func (c *CachingUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.User
		if err := json.Unmarshal(b, &out); err == nil && out.ID == id {
			metrics.UserCacheLookupsTotal.WithLabelValues(OutcomeHit).Inc()
			return &out, nil
		}
		// Delete corrupted cache entry
		metrics.UserCacheLookupsTotal.WithLabelValues(OutcomeCorrupt).Inc()
		_ = c.rdb.Del(ctx, key).Err()
	} else {
		metrics.UserCacheLookupsTotal.WithLabelValues(OutcomeMiss).Inc()
	}

	// 2) Fallback to the store
	out, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if out != nil {
		c.store(ctx, out)
	}
	return out, nil
}

func (c *CachingUserRepository) store(ctx context.Context, u *entity.User) {
	if b, err := json.Marshal(u); err == nil {
		_ = c.rdb.Set(ctx, c.cacheKey(u.ID), b, c.ttl).Err()
	}
}

// cacheKey generates the cache key of one user.
func (c *CachingUserRepository) cacheKey(id string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(id))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
