package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsondiagram/pkg/observability"
)

// logHooks forwards observability events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

// registerLogHooks routes layout, cache, search and session events to logger.
func registerLogHooks(logger *log.Logger) {
	h := logHooks{logger: logger}
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
	observability.SetSearchHooks(h)
	observability.SetSessionHooks(h)
}

func (h logHooks) OnLayoutStart(_ context.Context, engine string, nodeCount int) {
	h.logger.Debug("layout started", "engine", engine, "nodes", nodeCount)
}

func (h logHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "engine", engine, "duration", d, "error", err)
		return
	}
	h.logger.Debug("layout complete", "engine", engine, "duration", d)
}

func (h logHooks) OnLayoutFallback(_ context.Context, id, reason string) {
	h.logger.Debug("layout fallback", "node", id, "reason", reason)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnSearch(_ context.Context, scanned, matched int, d time.Duration) {
	h.logger.Debug("search", "scanned", scanned, "matched", matched, "duration", d)
}

func (h logHooks) OnSearchSuperseded(context.Context) {
	h.logger.Debug("search superseded")
}

func (h logHooks) OnSessionOpen(_ context.Context, id string) {
	h.logger.Debug("session opened", "session", id)
}

func (h logHooks) OnSessionClose(_ context.Context, id string, d time.Duration) {
	h.logger.Debug("session closed", "session", id, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnSessionMessage(_ context.Context, id, msgType string, err error) {
	if err != nil {
		h.logger.Debug("session message failed", "session", id, "type", msgType, "error", err)
		return
	}
	h.logger.Debug("session message", "session", id, "type", msgType)
}

var (
	_ observability.LayoutHooks  = logHooks{}
	_ observability.CacheHooks   = logHooks{}
	_ observability.SearchHooks  = logHooks{}
	_ observability.SessionHooks = logHooks{}
)
