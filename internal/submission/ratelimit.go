// internal/submission/ratelimit.go
package submission

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter bounds submissions per identity to a fixed quota within a rolling
// window.
type Limiter interface {
	// Allow reports whether the identity may submit now and, if so, records
	// the attempt.
	Allow(ctx context.Context, identity string) (bool, error)
}

// MemoryLimiter owns a mapping from identity to a bounded, time-ordered
// sequence of submission timestamps. The clock is injected so the rolling
// window is testable.
type MemoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	hits   map[string][]time.Time
}

func NewMemoryLimiter(limit int, window time.Duration, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		now:    now,
		hits:   make(map[string][]time.Time),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, identity string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.hits[identity][:0]
	for _, t := range l.hits[identity] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.hits[identity] = kept
		return false, nil
	}

	l.hits[identity] = append(kept, now)
	return true, nil
}

// RedisLimiter implements the same rolling window on Redis, for deployments
// where the submission API runs more than one replica. Timestamps live in a
// sorted set per identity, scored by nanoseconds.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, now func() time.Time) *RedisLimiter {
	if now == nil {
		now = time.Now
	}
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	key := "ratelimit:" + identity
	now := l.now()
	cutoff := now.Add(-l.window).UnixNano()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit window prune failed: %w", err)
	}

	if card.Val() >= int64(l.limit) {
		return false, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	add := l.client.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	if err := add.Err(); err != nil {
		return false, fmt.Errorf("rate limit record failed: %w", err)
	}
	// Keys for idle identities expire once the window has fully drained.
	_ = l.client.Expire(ctx, key, l.window).Err()

	return true, nil
}
