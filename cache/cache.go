// Package cache is the cache-aside layer in front of the announcements collection.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/metrics"
)

// ErrCacheMiss is returned when a key is absent or the cache cannot be reached
var ErrCacheMiss = errors.New("cache miss")

// go generate: mockery --name Invalidator

// Invalidator drops cached announcements after a committed mutation
type Invalidator interface {
	InvalidateAnnouncement(ctx context.Context, announcementID, associationID string)
	InvalidateAllAnnouncements(ctx context.Context)
}

// Cache wraps Redis behind a circuit breaker. Every failure degrades to a miss
// or a no-op so callers fall through to the store. Invalidations that fail are
// kept and replayed before the next read; until they succeed every read misses.
type Cache struct {
	client  *redis.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	ttl     time.Duration
	metrics *metrics.Registry

	mu              sync.Mutex
	pendingKeys     map[string]struct{}
	pendingPatterns map[string]struct{}
}

// New returns a Cache. A nil client disables caching. ttl of 0 keeps entries until invalidated.
func New(client *redis.Client, ttl time.Duration, m *metrics.Registry) *Cache {
	c := &Cache{
		client:          client,
		ttl:             ttl,
		metrics:         m,
		pendingKeys:     map[string]struct{}{},
		pendingPatterns: map[string]struct{}{},
	}
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.S().Warnw("cache circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			m.SetCacheBreakerOpen(to == gobreaker.StateOpen)
		},
	})
	return c
}

// Get unmarshals the cached value of key into dest
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if c == nil || c.client == nil {
		return ErrCacheMiss
	}
	if err := c.replayPending(ctx); err != nil {
		zap.S().Warnw("cache invalidation replay failed", "key", key, "error", err)
		return ErrCacheMiss
	}

	raw, err := c.cb.Execute(func() ([]byte, error) {
		return c.client.Get(ctx, key).Bytes()
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.metrics.RecordCacheError("get")
			zap.S().Warnw("cache get failed", "key", key, "error", err)
		}
		return ErrCacheMiss
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		zap.S().Warnw("cache value could not be decoded", "key", key, "error", err)
		return ErrCacheMiss
	}
	return nil
}

// Set stores value under key. Failures are logged, never returned.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		zap.S().Warnw("cache value could not be encoded", "key", key, "error", err)
		return
	}

	_, err = c.cb.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, key, payload, c.ttl).Err()
	})
	if err != nil {
		c.metrics.RecordCacheError("set")
		zap.S().Warnw("cache set failed", "key", key, "error", err)
	}
}

// Delete removes keys. Keys that could not be removed are retried before the next read.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}

	if err := c.del(ctx, keys...); err != nil {
		c.metrics.RecordCacheError("delete")
		zap.S().Warnw("cache delete failed", "keys", keys, "error", err)
		c.mu.Lock()
		for _, k := range keys {
			c.pendingKeys[k] = struct{}{}
		}
		c.mu.Unlock()
	}
}

// DeleteByPattern removes every key matching a glob pattern. A failed pattern is
// retried before the next read.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.delPattern(ctx, pattern); err != nil {
		c.metrics.RecordCacheError("delete_pattern")
		zap.S().Warnw("cache pattern delete failed", "pattern", pattern, "error", err)
		c.mu.Lock()
		c.pendingPatterns[pattern] = struct{}{}
		c.mu.Unlock()
	}
}

func (c *Cache) del(ctx context.Context, keys ...string) error {
	_, err := c.cb.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, keys...).Err()
	})
	return err
}

func (c *Cache) delPattern(ctx context.Context, pattern string) error {
	_, err := c.cb.Execute(func() ([]byte, error) {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			key := iter.Val()
			if err := c.client.Del(ctx, key).Err(); err != nil {
				return nil, fmt.Errorf("redis delete %s: %w", key, err)
			}
		}
		return nil, iter.Err()
	})
	return err
}

// replayPending retries failed invalidations. mu is held throughout so a read
// never sees a key whose invalidation is still outstanding.
func (c *Cache) replayPending(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for pattern := range c.pendingPatterns {
		if err := c.delPattern(ctx, pattern); err != nil {
			return err
		}
		delete(c.pendingPatterns, pattern)
	}
	if len(c.pendingKeys) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.pendingKeys))
	for k := range c.pendingKeys {
		keys = append(keys, k)
	}
	if err := c.del(ctx, keys...); err != nil {
		return err
	}
	c.pendingKeys = map[string]struct{}{}
	return nil
}

// InvalidateAnnouncement drops the announcement, its association listing and the full listing
func (c *Cache) InvalidateAnnouncement(ctx context.Context, announcementID, associationID string) {
	c.Delete(ctx, AnnouncementKeys(announcementID, associationID)...)
}

// InvalidateAllAnnouncements drops every announcement key
func (c *Cache) InvalidateAllAnnouncements(ctx context.Context) {
	c.DeleteByPattern(ctx, announcementPattern)
}

// GetOrLoad returns the cached value of key, or loads it, caches it and returns it.
// keyspace labels the hit and miss counters.
func GetOrLoad[T any](ctx context.Context, c *Cache, keyspace, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if err := c.Get(ctx, key, &cached); err == nil {
		c.recordLookup(keyspace, true)
		return cached, nil
	}
	c.recordLookup(keyspace, false)

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	c.Set(ctx, key, value)
	return value, nil
}

func (c *Cache) recordLookup(keyspace string, hit bool) {
	if c == nil {
		return
	}
	c.metrics.RecordCacheLookup(keyspace, hit)
}
