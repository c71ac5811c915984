// Package cache defines the response-cache contract used by the soils
// pipeline. Caching is best-effort: a failed cache never fails a request.
package cache

import (
	"context"
	"time"
)

type Interface interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// DelPrefix removes every key starting with prefix.
	DelPrefix(ctx context.Context, prefix string) error
}

type timeoutCache struct {
	inner Interface
	d     time.Duration
}

// WithTimeout bounds every cache operation so a slow Redis cannot hold up
// a request.
func WithTimeout(inner Interface, d time.Duration) Interface {
	if d <= 0 {
		return inner
	}
	return &timeoutCache{inner: inner, d: d}
}

func (t *timeoutCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.Get(opCtx, key)
}

func (t *timeoutCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	opCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.Set(opCtx, key, val, ttl)
}

func (t *timeoutCache) DelPrefix(ctx context.Context, prefix string) error {
	opCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.DelPrefix(opCtx, prefix)
}
