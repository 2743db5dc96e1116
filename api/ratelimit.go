package api

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"feecalc/internal/errors"
)

// Limiter bounds how often a client key may pass within a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter counts hits per key in Redis. The first hit on a key
// arms the expiry window; later hits within it count against the
// budget.
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
	max    int64
}

// NewRedisLimiter connects to Redis at addr.
func NewRedisLimiter(addr, password string, db int, window time.Duration, max int64) *RedisLimiter {
	return &RedisLimiter{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		window: window,
		max:    max,
	}
}

// Allow increments the key's counter and reports whether it is still
// within budget.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, errors.Wrap(errors.TypeInternal, "rate limit counter", err)
	}
	if count == 1 {
		if _, err := l.client.Expire(ctx, key, l.window).Result(); err != nil {
			return false, errors.Wrap(errors.TypeInternal, "rate limit expiry", err)
		}
	}
	return count <= l.max, nil
}

// Close releases the Redis connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

// Stale windows are swept once the map grows past this many keys.
const maxTrackedKeys = 4096

// MemoryLimiter is the in-process fallback used when no Redis address
// is configured. Windows reset lazily on the first hit after expiry.
type MemoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int64
	hits   map[string]*hitWindow

	now func() time.Time
}

type hitWindow struct {
	start time.Time
	count int64
}

// NewMemoryLimiter returns a limiter allowing max hits per key per
// window.
func NewMemoryLimiter(window time.Duration, max int64) *MemoryLimiter {
	return &MemoryLimiter{
		window: window,
		max:    max,
		hits:   make(map[string]*hitWindow),
		now:    time.Now,
	}
}

// Allow increments the key's counter and reports whether it is still
// within budget. It never returns an error.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.now()
	if len(l.hits) > maxTrackedKeys {
		for k, w := range l.hits {
			if n.Sub(w.start) >= l.window {
				delete(l.hits, k)
			}
		}
	}

	w := l.hits[key]
	if w == nil || n.Sub(w.start) >= l.window {
		w = &hitWindow{start: n}
		l.hits[key] = w
	}
	w.count++
	return w.count <= l.max, nil
}
