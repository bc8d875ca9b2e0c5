// Package cache keeps task list projections in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/redis/go-redis/v9"
)

// ListCache stores projections of the task collection. Entries are keyed by the
// store generation they were read at, so a reader at a newer generation never
// sees them.
type ListCache interface {
	// Lookup reports whether a projection for q at gen is stored.
	Lookup(ctx context.Context, gen int64, q domain.Query) ([]domain.Task, bool, error)
	Store(ctx context.Context, gen int64, q domain.Query, tasks []domain.Task) error
	// Retire drops every stored projection.
	Retire(ctx context.Context) error
}

// Disabled is a ListCache that never stores anything.
type Disabled struct{}

func (Disabled) Lookup(context.Context, int64, domain.Query) ([]domain.Task, bool, error) {
	return nil, false, nil
}

func (Disabled) Store(context.Context, int64, domain.Query, []domain.Task) error { return nil }

func (Disabled) Retire(context.Context) error { return nil }

// Config holds cache configuration. An empty RedisAddr disables the cache.
type Config struct {
	RedisAddr string
	Prefix    string
	TTL       time.Duration
}

// DefaultConfig returns the cache defaults. Redis stays off until an address is set.
func DefaultConfig() Config {
	return Config{
		Prefix: "tasks:",
		TTL:    time.Minute,
	}
}

// Enabled reports whether a Redis address is configured.
func (c Config) Enabled() bool {
	return c.RedisAddr != ""
}

// Stats counts cache traffic.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Stores  uint64  `json:"stores"`
	Retired uint64  `json:"retired"`
	Errors  uint64  `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// Cache is the Redis ListCache. Every stored key is also recorded in an index set
// so Retire can drop them without scanning the keyspace.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits, misses, stores, retired, errs atomic.Uint64
}

var _ ListCache = (*Cache)(nil)

// New creates a cache over client. Keys are namespaced by prefix and expire after ttl.
func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// listKey is the key of the projection for q at gen. The search text is escaped so
// user input cannot collide with the separators.
func (c *Cache) listKey(gen int64, q domain.Query) string {
	return c.prefix + "list:" + strconv.FormatInt(gen, 10) + ":" +
		string(q.Status) + ":" + string(q.Sort) + ":" + url.QueryEscape(q.Search)
}

func (c *Cache) indexKey() string {
	return c.prefix + "lists"
}

// Lookup reads a stored projection.
func (c *Cache) Lookup(ctx context.Context, gen int64, q domain.Query) ([]domain.Task, bool, error) {
	data, err := c.client.Get(ctx, c.listKey(gen, q)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		c.errs.Add(1)
		return nil, false, fmt.Errorf("cache get error: %w", err)
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		c.errs.Add(1)
		return nil, false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.hits.Add(1)
	return tasks, true, nil
}

// Store writes a projection and records its key in the index.
func (c *Cache) Store(ctx context.Context, gen int64, q domain.Query, tasks []domain.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		c.errs.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}

	key := c.listKey(gen, q)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		pipe.SAdd(ctx, c.indexKey(), key)
		// the index outlives nothing it points to
		pipe.Expire(ctx, c.indexKey(), c.ttl)
		return nil
	})
	if err != nil {
		c.errs.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}

	c.stores.Add(1)
	return nil
}

// Retire deletes every indexed projection together with the index.
func (c *Cache) Retire(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, c.indexKey()).Result()
	if err != nil {
		c.errs.Add(1)
		return fmt.Errorf("cache index error: %w", err)
	}

	keys = append(keys, c.indexKey())
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.errs.Add(1)
		return fmt.Errorf("cache delete error: %w", err)
	}

	c.retired.Add(uint64(len(keys) - 1))
	return nil
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Stores:  c.stores.Load(),
		Retired: c.retired.Load(),
		Errors:  c.errs.Load(),
		HitRate: hitRate,
	}
}

// Ping checks if the Redis connection is healthy.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
