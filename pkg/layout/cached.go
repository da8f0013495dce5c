package layout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsondiagram/pkg/cache"
	"github.com/matzehuels/jsondiagram/pkg/observability"
)

// placementVersion is part of every cache key; bump it when the placement
// encoding or the coordinate conventions change.
const placementVersion = 1

// DefaultCacheTTL is the lifetime of cached placements.
const DefaultCacheTTL = 7 * 24 * time.Hour

// CachedEngine memoises another engine's placements in a [cache.Cache].
// Requests are keyed by the hash of their JSON encoding. Cache failures
// are logged and otherwise ignored.
type CachedEngine struct {
	inner  Engine
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewCachedEngine wraps inner. A nil keyer uses the default keyer and a nil
// logger uses log.Default().
func NewCachedEngine(inner Engine, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *CachedEngine {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedEngine{inner: inner, cache: c, keyer: keyer, ttl: ttl, logger: logger}
}

// Name returns the wrapped engine's name.
func (e *CachedEngine) Name() string { return e.inner.Name() }

// Place returns a cached placement when available, otherwise delegates and
// stores the result.
func (e *CachedEngine) Place(ctx context.Context, req Request) (Placement, error) {
	reqData, err := json.Marshal(req)
	if err != nil {
		return e.inner.Place(ctx, req)
	}
	key := e.keyer.LayoutKey(cache.Hash(reqData), cache.LayoutKeyOpts{
		Engine:  e.inner.Name(),
		Version: placementVersion,
	})

	data, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Debug("layout cache read failed", "error", err)
	}
	if ok {
		var p Placement
		if err := json.Unmarshal(data, &p); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return p, nil
		}
		e.logger.Debug("discarding unreadable cached placement", "key", key)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	p, err := e.inner.Place(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(p)
	if err != nil {
		return p, nil
	}
	if err := e.cache.Set(ctx, key, data, e.ttl); err != nil {
		e.logger.Debug("layout cache write failed", "error", err)
		return p, nil
	}
	observability.Cache().OnCacheSet(ctx, "layout", len(data))
	return p, nil
}

// Ensure CachedEngine implements Engine.
var _ Engine = (*CachedEngine)(nil)
