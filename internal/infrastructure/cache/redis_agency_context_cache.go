package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appaccess "github.com/voyago/backend/internal/application/access"
	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/infrastructure/config"
)

// RedisAgencyContextCache caches per-agency module state in Redis so that
// permission checks do not hit the agencies table on every request. Suitable
// for distributed deployments where multiple instances share cache state.
type RedisAgencyContextCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisAgencyContextCache creates a cache backed by a new Redis connection
func NewRedisAgencyContextCache(redisCfg config.RedisConfig, cacheCfg config.CacheConfig) (*RedisAgencyContextCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisAgencyContextCacheWithClient(client, "", cacheCfg.AgencyContextTTL), nil
}

// NewRedisAgencyContextCacheWithClient creates a cache with an existing Redis
// client. This is useful for testing or when sharing a client across
// components.
func NewRedisAgencyContextCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisAgencyContextCache {
	if keyPrefix == "" {
		keyPrefix = "agency:context:"
	}
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &RedisAgencyContextCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

type cachedAgencyContext struct {
	AgencyID         uuid.UUID `json:"agency_id"`
	ActiveModules    []string  `json:"active_modules"`
	RequestedModules []string  `json:"requested_modules"`
}

// Get returns the cached context for the agency, or (nil, nil) on a miss.
// A corrupt entry is treated as a miss so the caller falls through to the
// repository and overwrites it.
func (c *RedisAgencyContextCache) Get(ctx context.Context, agencyID uuid.UUID) (*access.AgencyContext, error) {
	payload, err := c.client.Get(ctx, c.key(agencyID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read agency context: %w", err)
	}

	var entry cachedAgencyContext
	if err := json.Unmarshal(payload, &entry); err != nil {
		_ = c.client.Del(ctx, c.key(agencyID)).Err()
		return nil, nil
	}

	return &access.AgencyContext{
		AgencyID:         entry.AgencyID,
		ActiveModules:    toModuleIDs(entry.ActiveModules),
		RequestedModules: toModuleIDs(entry.RequestedModules),
		Loaded:           true,
	}, nil
}

// Set stores the context under the configured TTL. Only loaded contexts are
// cached: an unloaded context is a degraded fallback, not agency state.
func (c *RedisAgencyContextCache) Set(ctx context.Context, agencyCtx *access.AgencyContext) error {
	if agencyCtx == nil || !agencyCtx.Loaded {
		return nil
	}

	entry := cachedAgencyContext{
		AgencyID:         agencyCtx.AgencyID,
		ActiveModules:    toStrings(agencyCtx.ActiveModules),
		RequestedModules: toStrings(agencyCtx.RequestedModules),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode agency context: %w", err)
	}

	if err := c.client.Set(ctx, c.key(agencyCtx.AgencyID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write agency context: %w", err)
	}
	return nil
}

// Invalidate drops the cached context after a module state change
func (c *RedisAgencyContextCache) Invalidate(ctx context.Context, agencyID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(agencyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate agency context: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisAgencyContextCache) Close() error {
	return c.client.Close()
}

func (c *RedisAgencyContextCache) key(agencyID uuid.UUID) string {
	return c.keyPrefix + agencyID.String()
}

func toStrings(ids []module.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func toModuleIDs(values []string) []module.ID {
	out := make([]module.ID, len(values))
	for i, v := range values {
		out[i] = module.ID(v)
	}
	return out
}

var _ appaccess.AgencyContextCache = (*RedisAgencyContextCache)(nil)
