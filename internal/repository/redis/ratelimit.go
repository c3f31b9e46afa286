package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"fincoach/internal/guardrails"
	"fincoach/pkg/errors"
)

// Compile-time check
var _ guardrails.RateLimiter = (*RateLimiter)(nil)

// Lua script for three fixed counting windows (atomic operation)
// KEYS[1..3] = minute, hour, day counter keys
// ARGV[1..3] = minute, hour, day limits
// Returns: 0 if allowed, otherwise the index of the exhausted window
const luaWindowScript = `
local ttls = {60, 3600, 86400}

for i = 1, 3 do
    local current = tonumber(redis.call('GET', KEYS[i]) or '0')
    if current >= tonumber(ARGV[i]) then
        return i
    end
end

for i = 1, 3 do
    local count = redis.call('INCR', KEYS[i])
    if count == 1 then
        redis.call('EXPIRE', KEYS[i], ttls[i])
    end
end

return 0
`

var windowNames = [...]string{"minute", "hour", "day"}

// RateLimiter enforces per-user query quotas with counters shared
// across instances
type RateLimiter struct {
	client *redis.Client
	limits guardrails.Limits
	script *redis.Script
}

// NewRateLimiter creates a Redis-backed rate limiter
func NewRateLimiter(client *redis.Client, limits guardrails.Limits) *RateLimiter {
	return &RateLimiter{
		client: client,
		limits: limits,
		script: redis.NewScript(luaWindowScript),
	}
}

// Allow consumes one query slot for the user, or returns
// ErrRateLimitExceeded naming the exhausted window. Redis errors fail
// open.
func (l *RateLimiter) Allow(ctx context.Context, userID string) error {
	keys := []string{
		fmt.Sprintf("rate:%s:minute", userID),
		fmt.Sprintf("rate:%s:hour", userID),
		fmt.Sprintf("rate:%s:day", userID),
	}
	args := []interface{}{l.limits.PerMinute, l.limits.PerHour, l.limits.PerDay}

	result, err := l.script.Run(ctx, l.client, keys, args...).Result()
	if err != nil {
		return nil
	}

	exhausted, ok := result.(int64)
	if !ok || exhausted == 0 {
		return nil
	}

	window := windowNames[exhausted-1]
	limit := args[exhausted-1]
	return errors.Wrapf(errors.ErrRateLimitExceeded,
		"rate limit: max %s queries/%s", formatLimit(limit), window)
}

func formatLimit(v interface{}) string {
	if n, ok := v.(int); ok {
		return strconv.Itoa(n)
	}
	return fmt.Sprint(v)
}
