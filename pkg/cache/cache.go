// Package cache provides the lookup cache vendor sources use to memoize
// remote identifiers (user emails, template ids) during a migration run. A
// bounded in-memory cache is the default; Redis is available when several
// runs against the same account should share lookups.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache stores string lookups with a TTL. Implementations are safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New creates a cache from a URL: empty or "memory://" for the bounded
// in-memory cache, "redis://..." for Redis.
func New(url string, maxEntries int, ttl time.Duration) (Cache, error) {
	switch {
	case url == "" || strings.HasPrefix(url, "memory://"):
		return NewMemory(maxEntries, ttl), nil
	case strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://"):
		return NewRedis(url, ttl)
	default:
		return nil, fmt.Errorf("unsupported cache URL: %s", url)
	}
}
