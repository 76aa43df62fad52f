// Package cache keeps session records and rate limit buckets in Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the Redis client. Zero fields keep the client defaults.
type Options struct {
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
}

// Cache wraps a go-redis client.
type Cache struct {
	client *redis.Client
}

// New connects to redisURL and pings it. The client is closed again if the
// ping fails.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	if opts.MinIdleConns > 0 {
		redisOpts.MinIdleConns = opts.MinIdleConns
	}
	if opts.DialTimeout > 0 {
		redisOpts.DialTimeout = opts.DialTimeout
	}

	c := &Cache{client: redis.NewClient(redisOpts)}
	if err := c.Ping(ctx); err != nil {
		_ = c.client.Close()
		return nil, err
	}
	return c, nil
}

// Ping reports whether Redis answers. /readyz calls it.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close shuts the client down.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client to integration tests.
func (c *Cache) Client() *redis.Client {
	return c.client
}
