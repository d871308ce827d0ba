package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appaccess "github.com/voyago/backend/internal/application/access"
	"github.com/voyago/backend/internal/domain/access"
)

// InMemoryAgencyContextCache is a process-local AgencyContextCache for
// single-instance deployments and tests. Entries expire lazily on read.
type InMemoryAgencyContextCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]inMemoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type inMemoryEntry struct {
	ctx       access.AgencyContext
	expiresAt time.Time
}

// NewInMemoryAgencyContextCache creates an in-memory cache with the given TTL
func NewInMemoryAgencyContextCache(ttl time.Duration) *InMemoryAgencyContextCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryAgencyContextCache{
		entries: make(map[uuid.UUID]inMemoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached context for the agency, or (nil, nil) on a miss
func (c *InMemoryAgencyContextCache) Get(_ context.Context, agencyID uuid.UUID) (*access.AgencyContext, error) {
	c.mu.RLock()
	entry, ok := c.entries[agencyID]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, agencyID)
		c.mu.Unlock()
		return nil, nil
	}

	ctx := entry.ctx
	return &ctx, nil
}

// Set stores a loaded context; unloaded contexts are never cached
func (c *InMemoryAgencyContextCache) Set(_ context.Context, agencyCtx *access.AgencyContext) error {
	if agencyCtx == nil || !agencyCtx.Loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[agencyCtx.AgencyID] = inMemoryEntry{
		ctx:       *agencyCtx,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the cached context for the agency
func (c *InMemoryAgencyContextCache) Invalidate(_ context.Context, agencyID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, agencyID)
	return nil
}

// Len returns the number of live entries (for tests and monitoring)
func (c *InMemoryAgencyContextCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ appaccess.AgencyContextCache = (*InMemoryAgencyContextCache)(nil)
