package guardrails

import (
	"context"
	"sync"
	"time"

	"fincoach/internal/adapters/config"
	"fincoach/pkg/errors"
)

// RateLimiter bounds how many queries a user may run per minute, hour
// and day. Implementations must be safe for concurrent use.
type RateLimiter interface {
	// Allow records the request and returns ErrRateLimitExceeded if any
	// window is already full.
	Allow(ctx context.Context, userID string) error
}

// Limits holds the three window quotas
type Limits struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

// LimitsFromConfig extracts quotas from guardrails config
func LimitsFromConfig(cfg config.GuardrailsConfig) Limits {
	return Limits{
		PerMinute: cfg.QueriesPerMinute,
		PerHour:   cfg.QueriesPerHour,
		PerDay:    cfg.QueriesPerDay,
	}
}

// MemoryRateLimiter keeps per-user request timestamps in memory.
// Suitable for a single instance, use the Redis implementation when
// running more than one replica.
type MemoryRateLimiter struct {
	limits Limits
	mu     sync.Mutex
	users  map[string][]time.Time
	now    func() time.Time
}

// NewMemoryRateLimiter creates an in-memory limiter
func NewMemoryRateLimiter(limits Limits) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limits: limits,
		users:  make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow checks all three windows and records the request if permitted
func (l *MemoryRateLimiter) Allow(ctx context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	dayAgo := now.Add(-24 * time.Hour)
	hourAgo := now.Add(-time.Hour)
	minuteAgo := now.Add(-time.Minute)

	// Drop requests older than the largest window
	kept := l.users[userID][:0]
	for _, t := range l.users[userID] {
		if t.After(dayAgo) {
			kept = append(kept, t)
		}
	}

	minuteCount, hourCount := 0, 0
	for _, t := range kept {
		if t.After(minuteAgo) {
			minuteCount++
		}
		if t.After(hourAgo) {
			hourCount++
		}
	}

	l.users[userID] = kept

	if minuteCount >= l.limits.PerMinute {
		return errors.Wrapf(errors.ErrRateLimitExceeded, "rate limit: max %d queries/minute", l.limits.PerMinute)
	}
	if hourCount >= l.limits.PerHour {
		return errors.Wrapf(errors.ErrRateLimitExceeded, "rate limit: max %d queries/hour", l.limits.PerHour)
	}
	if len(kept) >= l.limits.PerDay {
		return errors.Wrapf(errors.ErrRateLimitExceeded, "rate limit: max %d queries/day", l.limits.PerDay)
	}

	l.users[userID] = append(kept, now)
	return nil
}
