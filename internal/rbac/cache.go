package rbac

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "rbac:version"

// Cache is a short-TTL, versioned cache over role and permission sets. Role
// assignment bumps the version, invalidating every cached set at once.
// Token verification results are never cached here or anywhere else.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps client. A nil client disables caching: every lookup falls
// through to the loader.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *Cache) key(ctx context.Context, parts ...string) (string, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", strings.Join(parts, ":"), ver), nil
}

// FetchStrings loads a cached string set or populates it via loader.
// Cache faults degrade to the loader result; they never fail the request.
func (c *Cache) FetchStrings(ctx context.Context, parts []string, loader func(context.Context) ([]string, error)) ([]string, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key, err := c.key(ctx, parts...)
	if err != nil {
		return loader(ctx)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var values []string
		if json.Unmarshal(payload, &values) == nil {
			return values, nil
		}
	}
	values, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(values); err == nil {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	return values, nil
}

// Bump invalidates all cached sets by incrementing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
