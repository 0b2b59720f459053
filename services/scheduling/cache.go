package scheduling

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ProfileCache stores derived preference/pattern profiles. Entries are
// invalidated, never mutated in place; a stale read only affects scoring
// quality, so cache errors are swallowed and treated as misses.
type ProfileCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
}

// RedisProfileCache is the production cache, JSON-encoded values under a
// shared key namespace.
type RedisProfileCache struct {
	Client *redis.Client
}

func (c *RedisProfileCache) Get(ctx context.Context, key string, dest any) bool {
	data, err := c.Client.Get(ctx, "profile:"+key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(data), dest) == nil
}

func (c *RedisProfileCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Client.Set(ctx, "profile:"+key, data, ttl)
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, key string) {
	c.Client.Del(ctx, "profile:"+key)
}

// MemoryProfileCache is a process-local cache used in tests and as a
// fallback when redis is not configured.
type MemoryProfileCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryProfileCache() *MemoryProfileCache {
	return &MemoryProfileCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryProfileCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return false
	}
	return json.Unmarshal(entry.data, dest) == nil
}

func (c *MemoryProfileCache) Set(_ context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *MemoryProfileCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
