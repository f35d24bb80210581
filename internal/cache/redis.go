package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is used when a Redis cache is created without a TTL
const DefaultTTL = 10 * time.Minute

// Redis stores JSON-encoded values in Redis with a TTL
type Redis[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects lazily to the Redis server at url, e.g.
// "redis://localhost:6379/0".
func NewRedis[V any](url, prefix string, ttl time.Duration) (*Redis[V], error) {
	if url == "" {
		return nil, errors.New("redis cache requires a URL")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisFromClient[V](redis.NewClient(opts), prefix, ttl), nil
}

// NewRedisFromClient wraps an existing client
func NewRedisFromClient[V any](client *redis.Client, prefix string, ttl time.Duration) *Redis[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis[V]{client: client, prefix: prefix, ttl: ttl}
}

func (c *Redis[V]) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + k
}

// Get implements Cache. A missing key is a miss, not an error.
func (c *Redis[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var v V
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decode cached value: %w", err)
	}
	return v, true, nil
}

// Set implements Cache
func (c *Redis[V]) Set(ctx context.Context, key string, value V) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached value: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Backend implements Cache
func (c *Redis[V]) Backend() string { return BackendRedis }

// Ping checks the connection
func (c *Redis[V]) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client connections
func (c *Redis[V]) Close() error {
	return c.client.Close()
}
