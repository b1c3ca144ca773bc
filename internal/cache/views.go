// Package cache stores computed ranked views.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// RedisViewCache keeps ranked views in Redis as JSON with a TTL.
type RedisViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisViewCache(client *redis.Client, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisViewCache) Get(ctx context.Context, key string) (*models.RankedView, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view %s: %w", key, err)
	}

	var view models.RankedView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("failed to decode view %s: %w", key, err)
	}
	return &view, nil
}

func (c *RedisViewCache) Set(ctx context.Context, key string, view models.RankedView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to encode view %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Ping checks the connection.
func (c *RedisViewCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

type memoryEntry struct {
	view    models.RankedView
	expires time.Time
}

// MemoryViewCache is an in-process view cache used when Redis is not configured.
// It keeps at most capacity entries and evicts the oldest first.
type MemoryViewCache struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	order    []string
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryViewCache(capacity int, ttl time.Duration) *MemoryViewCache {
	if capacity <= 0 {
		capacity = 128
	}
	return &MemoryViewCache{
		entries:  make(map[string]memoryEntry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (c *MemoryViewCache) Get(_ context.Context, key string) (*models.RankedView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if c.ttl > 0 && c.now().After(e.expires) {
		return nil, nil
	}
	view := e.view
	return &view, nil
}

func (c *MemoryViewCache) Set(_ context.Context, key string, view models.RankedView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = memoryEntry{view: view, expires: c.now().Add(c.ttl)}

	for len(c.entries) > c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	return nil
}
