package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	authBucketPrefix = "ratelimit:auth:"
	// authBucketIdle is how long an untouched bucket survives. A bucket idle
	// this long has refilled anyway.
	authBucketIdle = 2 * time.Minute
)

// RateLimitResult is the outcome of one bucket check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// authBucketScript refills and spends one token atomically.
// KEYS[1] bucket; ARGV: refill per ms, capacity, now ms, idle ttl ms.
// Returns {allowed, retry_after_ms, whole tokens left}.
var authBucketScript = redis.NewScript(`
local refill = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil then
	tokens = capacity
	ts = now
end

tokens = math.min(capacity, tokens + math.max(0, now - ts) * refill)

local allowed = 0
local wait = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	wait = math.ceil((1 - tokens) / refill)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', now)
redis.call('PEXPIRE', KEYS[1], ttl)

return {allowed, wait, math.floor(tokens)}
`)

// CheckAuthRateLimit spends one token from the bucket of the client IP.
// Signup and login submissions share the bucket. Raw IPs never reach Redis.
// A non-positive ratePerMinute disables the limit.
func (c *Cache) CheckAuthRateLimit(ctx context.Context, ip string, ratePerMinute, burst int) (*RateLimitResult, error) {
	now := time.Now()
	if ratePerMinute <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: now}, nil
	}
	if burst < 1 {
		burst = 1
	}

	refillPerMs := float64(ratePerMinute) / float64(time.Minute.Milliseconds())
	out, err := authBucketScript.Run(ctx, c.client,
		[]string{authBucketKey(ip)},
		refillPerMs, burst, now.UnixMilli(), authBucketIdle.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("run auth bucket script: %w", err)
	}
	if len(out) != 3 {
		return nil, fmt.Errorf("auth bucket script returned %d values", len(out))
	}

	retry := time.Duration(out[1]) * time.Millisecond
	perToken := time.Minute / time.Duration(ratePerMinute)
	return &RateLimitResult{
		Allowed:    out[0] == 1,
		Remaining:  out[2],
		ResetAt:    now.Add(perToken),
		RetryAfter: retry,
	}, nil
}

func authBucketKey(ip string) string {
	return authBucketPrefix + hashIP(ip)
}

// hashIP returns 16 hex chars of SHA-256 over ip.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
