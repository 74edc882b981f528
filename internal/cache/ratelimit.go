package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mahora/task-tracker/internal/constants"
	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the counter for KEYS[1], starts the window on
// the first hit, and returns {count, remaining window in ms}.
var fixedWindowScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	return {current, ttl}
`)

// LoginLimiter allows at most limit attempts per key within window.
type LoginLimiter struct {
	cache  *Cache
	limit  int
	window time.Duration
}

// NewLoginLimiter creates a fixed-window limiter backed by c.
func NewLoginLimiter(c *Cache, limit int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		cache:  c,
		limit:  limit,
		window: window,
	}
}

// Allow records one attempt for key. retryAfter is the time left in the
// current window when the attempt is refused.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := fixedWindowScript.Run(ctx, l.cache.client,
		[]string{loginKey(key)},
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("failed to run login rate limit: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit reply: %v", res)
	}

	count, ttl := res[0], res[1]
	if count <= int64(l.limit) {
		return true, 0, nil
	}

	retryAfter := time.Duration(ttl) * time.Millisecond
	if retryAfter < 0 {
		retryAfter = l.window
	}
	return false, retryAfter, nil
}

func loginKey(key string) string {
	return constants.LoginRateLimitPrefix + key
}
