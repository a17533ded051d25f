// Package cachemanager provides a small generic caching layer over an
// in-memory store, plus a read-through wrapper for expensive lookups.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is the caching interface riptide components depend on.
type CacheManager[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	GetWithRefresh(ctx context.Context, key string, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...string) error
	Flush(ctx context.Context) error
}
