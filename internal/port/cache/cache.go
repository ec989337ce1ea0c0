// Package cache defines the port interface for record-read caching.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for key-value caching. Sandbox connectors use
// it as a read-through cache for query and search results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
