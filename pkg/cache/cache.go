// Package cache provides byte-level caching for computed layouts.
//
// Running the external layout algorithm is by far the most expensive step of
// building a diagram. Layout requests are deterministic (same boxes, links
// and spacing always give the same placement), so their results can be
// cached under a hash of the request.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NewNullCache]: caching disabled
//
// # Keys
//
// A [Keyer] turns a request hash into a storage key. [NewScopedKeyer] adds a
// prefix so several deployments can share one Redis database.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte slices with an optional time to live.
//
// Get reports a miss with ok == false and a nil error; errors are reserved
// for backend failures. A ttl of zero stores the entry without expiration.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewNullCache returns a cache that stores nothing; every Get misses.
func NewNullCache() Cache { return nullCache{} }

type nullCache struct{}

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }
