// Package cache is the lookup cache used by the permission resolver. Entries
// are grouped by namespace and a namespace is only ever cleared as a whole.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hrms/internal/platform/config"
)

type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, namespace, key string, dest any) (bool, error)
	Set(ctx context.Context, namespace, key string, value any) error
	Clear(ctx context.Context, namespace string) error
}

// New picks the backend named by CACHE_BACKEND. rdb may be nil unless the
// backend is redis.
func New(cfg config.Config, rdb *redis.Client) (Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis cache selected without a redis client")
		}
		return NewRedis(rdb, cfg.CacheTTL), nil
	case config.CacheLocal:
		return NewLocal(cfg.CacheTTL)
	default:
		return Noop{}, nil
	}
}

type Noop struct{}

func (Noop) Get(context.Context, string, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, string, any) error         { return nil }
func (Noop) Clear(context.Context, string) error                    { return nil }

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 10 * time.Minute
	}
	return ttl
}
