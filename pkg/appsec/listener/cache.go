package listener

import (
	"fmt"
	"log/slog"
	"sync"

	"bastion-hq/rampart/pkg/waf"
)

// ContextCache lazily creates and caches one engine evaluation handle per
// request context, validated for liveness before each reuse.
//
// The cache is a lookup relation, not an ownership one: entries are removed
// by explicit teardown (Clear at request end, ClearAll at engine
// reconfiguration) and never outlive their request. At most one live handle
// is associated with a request context at any time.
type ContextCache struct {
	engine waf.Engine
	logger *slog.Logger

	mu      sync.Mutex
	handles map[RequestContext]waf.Handle
}

// NewContextCache creates a cache creating handles from the given engine.
func NewContextCache(engine waf.Engine, logger *slog.Logger) *ContextCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextCache{
		engine:  engine,
		logger:  logger.With("component", "appsec.execctx"),
		handles: make(map[RequestContext]waf.Handle),
	}
}

// GetOrCreate returns the evaluation handle for reqCtx, creating one when
// none is cached or the cached handle has been disposed.
//
// A nil reqCtx yields a fresh transient handle that is never cached:
// evaluation without a stable request identity cannot be safely memoized.
// The returned transient flag tells the caller it owns disposal.
func (c *ContextCache) GetOrCreate(reqCtx RequestContext) (h waf.Handle, transient bool, err error) {
	if reqCtx == nil {
		h, err = c.engine.NewHandle()
		if err != nil {
			return nil, false, fmt.Errorf("failed to create transient waf context: %w", err)
		}
		return h, true, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.handles[reqCtx]; ok {
		if !cached.Closed() {
			return cached, false, nil
		}
		// A disposed handle in the cache is treated as absent and
		// replaced. Self-healed, never surfaced.
		c.logger.Debug("replacing disposed waf context in cache")
		delete(c.handles, reqCtx)
	}

	h, err = c.engine.NewHandle()
	if err != nil {
		return nil, false, fmt.Errorf("failed to create waf context: %w", err)
	}
	c.handles[reqCtx] = h
	return h, false, nil
}

// Clear disposes and removes the cached handle for reqCtx, if any.
func (c *ContextCache) Clear(reqCtx RequestContext) {
	c.mu.Lock()
	h, ok := c.handles[reqCtx]
	if ok {
		delete(c.handles, reqCtx)
	}
	c.mu.Unlock()

	if ok && !h.Closed() {
		if err := h.Close(); err != nil {
			c.logger.Debug("failed to close waf context", "error", err)
		}
	}
}

// ClearAll disposes and removes every cached handle.
func (c *ContextCache) ClearAll() {
	c.mu.Lock()
	handles := c.handles
	c.handles = make(map[RequestContext]waf.Handle)
	c.mu.Unlock()

	for _, h := range handles {
		if !h.Closed() {
			if err := h.Close(); err != nil {
				c.logger.Debug("failed to close waf context", "error", err)
			}
		}
	}
}

// Len returns the number of cached entries.
func (c *ContextCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}
