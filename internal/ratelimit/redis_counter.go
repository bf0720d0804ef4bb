// Package ratelimit provides a Redis-backed counter so httprate limits hold across API instances.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
)

const (
	defaultPrefix  = "httprate"
	commandTimeout = 100 * time.Millisecond
)

// redisClient is the subset of *redis.Client the counter uses
type redisClient interface {
	IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// RedisCounter implements httprate.LimitCounter on Redis.
// Each window is one key; it expires after two window lengths, once it can no longer be the previous window.
type RedisCounter struct {
	client       redisClient
	prefix       string
	windowLength time.Duration
}

var _ httprate.LimitCounter = (*RedisCounter)(nil)

// NewRedisCounter creates a counter; prefix namespaces the keys of one limiter
func NewRedisCounter(client *redis.Client, prefix string) *RedisCounter {
	return newRedisCounter(client, prefix)
}

func newRedisCounter(client redisClient, prefix string) *RedisCounter {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisCounter{
		client:       client,
		prefix:       prefix,
		windowLength: time.Minute,
	}
}

// Config is called by httprate with the limiter's settings
func (c *RedisCounter) Config(requestLimit int, windowLength time.Duration) {
	c.windowLength = windowLength
}

// Increment adds one to the counter of key in currentWindow
func (c *RedisCounter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

// IncrementBy adds amount to the counter of key in currentWindow
func (c *RedisCounter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	k := c.key(key, currentWindow)
	if err := c.client.IncrBy(ctx, k, int64(amount)).Err(); err != nil {
		return fmt.Errorf("rate limit increment failed: %w", err)
	}
	if err := c.client.Expire(ctx, k, 2*c.windowLength).Err(); err != nil {
		return fmt.Errorf("rate limit expire failed: %w", err)
	}
	return nil
}

// Get returns the counts of key in the current and previous window
func (c *RedisCounter) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	values, err := c.client.MGet(ctx, c.key(key, currentWindow), c.key(key, previousWindow)).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit get failed: %w", err)
	}
	if len(values) != 2 {
		return 0, 0, fmt.Errorf("rate limit get: expected 2 values, got %d", len(values))
	}

	curr, err := toCount(values[0])
	if err != nil {
		return 0, 0, err
	}
	prev, err := toCount(values[1])
	if err != nil {
		return 0, 0, err
	}
	return curr, prev, nil
}

func (c *RedisCounter) key(key string, window time.Time) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, key, window.Unix())
}

// toCount converts an MGET value, nil meaning a missing key
func toCount(v any) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("rate limit counter is not a number: %w", err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected rate limit counter type %T", v)
	}
}
