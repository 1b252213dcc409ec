// Package cache provides the result cache used for per-actor task lists.
//
// Values are opaque byte slices; callers own serialization. Entries expire
// after their TTL or when an explicit prefix sweep removes them, whichever
// comes first. The cache is a read-through convenience, never a write path.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a key/value store with TTL and bulk invalidation by key prefix.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every currently-held key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}
