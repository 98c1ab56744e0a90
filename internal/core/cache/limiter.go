package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter counts failed attempts per key inside a fixed window
type AttemptLimiter interface {
	// Blocked reports whether key already used up its attempts
	Blocked(ctx context.Context, key string) (bool, error)
	// Fail records one failed attempt and returns the count in the window
	Fail(ctx context.Context, key string) (int64, error)
	// Reset forgets the attempts of key
	Reset(ctx context.Context, key string) error
}

// RedisLimiter keeps counters in redis with INCR + EXPIRE
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing max failures per window
func NewRedisLimiter(r *Redis, prefix string, max int64, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: r.Client(), prefix: prefix, max: max, window: window}
}

func (l *RedisLimiter) key(k string) string {
	return l.prefix + ":" + k
}

func (l *RedisLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(key)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return n >= l.max, nil
}

func (l *RedisLimiter) Fail(ctx context.Context, key string) (int64, error) {
	k := l.key(key)
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return n, fmt.Errorf("redis expire %s: %w", key, err)
		}
	}
	return n, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// MemoryLimiter is the in-process fallback when redis is not configured
type MemoryLimiter struct {
	mu      sync.Mutex
	max     int64
	window  time.Duration
	now     func() time.Time
	buckets map[string]*bucket
}

type bucket struct {
	count   int64
	expires time.Time
}

func NewMemoryLimiter(max int64, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     max,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// WithClock replaces the time source
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) live(key string) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		return nil
	}
	if !l.now().Before(b.expires) {
		delete(l.buckets, key)
		return nil
	}
	return b
}

func (l *MemoryLimiter) Blocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.live(key)
	return b != nil && b.count >= l.max, nil
}

func (l *MemoryLimiter) Fail(_ context.Context, key string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.live(key)
	if b == nil {
		b = &bucket{expires: l.now().Add(l.window)}
		l.buckets[key] = b
	}
	b.count++
	return b.count, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
	return nil
}
