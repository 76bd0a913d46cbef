// Package cache fronts workflow definition reads with an explicit
// read-through cache. Definitions are reference data read on every
// submission but edited rarely; admin writes must call Invalidate so the
// resolver never routes against stale configuration.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nimbuserp/approval-engine/internal/application/port"
	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

// DefinitionCache implements port.DefinitionCache over a WorkflowRepository.
type DefinitionCache struct {
	repo   port.WorkflowRepository
	ttl    time.Duration
	logger *zap.Logger

	mu       sync.Mutex
	defs     []entity.WorkflowDefinition
	loadedAt time.Time
	valid    bool
}

// NewDefinitionCache creates a cache over repo. ttl bounds staleness for
// edits that bypass this process; explicit Invalidate remains the
// contract for in-process edits.
func NewDefinitionCache(repo port.WorkflowRepository, ttl time.Duration, logger *zap.Logger) *DefinitionCache {
	return &DefinitionCache{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
	}
}

// ListActive returns the active definitions, reading through to the
// repository on a miss or expiry.
func (c *DefinitionCache) ListActive(ctx context.Context) ([]entity.WorkflowDefinition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && (c.ttl <= 0 || time.Since(c.loadedAt) < c.ttl) {
		return c.defs, nil
	}

	defs, err := c.repo.ListActive(ctx)
	if err != nil {
		// Serve nothing rather than stale data on a store failure; the
		// caller propagates the retryable error.
		return nil, err
	}

	c.defs = defs
	c.loadedAt = time.Now()
	c.valid = true
	c.logger.Debug("Workflow definition cache refreshed", zap.Int("count", len(defs)))
	return defs, nil
}

// Invalidate drops the cached definitions. Called after every admin edit.
func (c *DefinitionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs = nil
	c.valid = false
	c.logger.Debug("Workflow definition cache invalidated")
}

// Verify interface compliance
var _ port.DefinitionCache = (*DefinitionCache)(nil)
