// Package cachemanager provides a generic TTL cache with a read-through
// wrapper. The grammar registry uses it to memoize loaded grammars per
// language id.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is the generic cache contract.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
