package cache

import (
	"context"
	"time"
)

// Cache defines the interface for cache operations
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set adds a value to the cache with the specified expiration
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string)

	// DeleteByPrefix removes all values with the given key prefix
	DeleteByPrefix(ctx context.Context, prefix string)
}
