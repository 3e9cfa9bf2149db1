package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitScript increments the window counter, starts the expiry on the
// first hit and returns the count with the remaining TTL in milliseconds.
const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

const redisKeyPrefix = "veridia:ratelimit:"

type redisRateLimiter struct {
	client  *redis.Client
	script  *redis.Script
	log     *slog.Logger
	timeout time.Duration
}

// NewRedisRateLimiter constructs a Redis backed rate limiter shared by all
// instances of the service. It fails if Redis does not answer a ping.
func NewRedisRateLimiter(ctx context.Context, addr, password string, db int, log *slog.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return newRedisRateLimiter(client, log), nil
}

func newRedisRateLimiter(client *redis.Client, log *slog.Logger) *redisRateLimiter {
	return &redisRateLimiter{
		client:  client,
		script:  redis.NewScript(rateLimitScript),
		log:     log,
		timeout: 250 * time.Millisecond,
	}
}

// Allow fails open: a Redis error lets the request through.
func (rl *redisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) RateDecision {
	if limit <= 0 {
		return RateDecision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	res, err := rl.script.Run(ctx, rl.client, []string{redisKeyPrefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		rl.logRedisError("eval", err)
		return RateDecision{Allowed: true}
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl <= 0 {
		ttl = window
	}
	return RateDecision{
		Allowed:   count <= limit,
		Count:     count,
		WindowEnd: time.Now().Add(ttl),
	}
}

func (rl *redisRateLimiter) Close() {
	if rl.client != nil {
		_ = rl.client.Close()
	}
}

func (rl *redisRateLimiter) logRedisError(op string, err error) {
	if rl.log == nil {
		return
	}
	rl.log.Error("redis rate limiter error", "op", op, "error", err)
}
