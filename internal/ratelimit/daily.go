package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	errx "github.com/lapu-lapu-poc/server/internal/core/error"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// DailyBudget counts call creations per calendar day. Reserve must be atomic:
// it only succeeds while the day's count is below the cap.
type DailyBudget interface {
	// Reserve increments the count for day if it is below the cap.
	Reserve(ctx context.Context, day string) (bool, error)
	// Release undoes one successful Reserve for day.
	Release(ctx context.Context, day string) error
	// Used reports the count for day without changing it.
	Used(ctx context.Context, day string) (int64, error)
	// Cap returns the per-day limit.
	Cap() int64
}

// MemoryBudget is a single-process DailyBudget. The counter resets the first
// time a reservation observes a new day string.
type MemoryBudget struct {
	mu   sync.Mutex
	cap  int64
	day  string
	used int64
}

func NewMemoryBudget(limit int64) *MemoryBudget {
	return &MemoryBudget{cap: limit}
}

func (b *MemoryBudget) Cap() int64 { return b.cap }

func (b *MemoryBudget) Reserve(_ context.Context, day string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.day != day {
		b.day = day
		b.used = 0
	}
	if b.used >= b.cap {
		return false, nil
	}
	b.used++
	return true, nil
}

func (b *MemoryBudget) Release(_ context.Context, day string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.day == day && b.used > 0 {
		b.used--
	}
	return nil
}

func (b *MemoryBudget) Used(_ context.Context, day string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.day != day {
		return 0, nil
	}
	return b.used, nil
}

// RedisBudget shares the daily budget between server replicas. Each day has
// its own key so the reset needs no coordination.
type RedisBudget struct {
	rdb    redis.Cmdable
	cap    int64
	prefix string
	ttl    time.Duration
}

func NewRedisBudget(rdb redis.Cmdable, limit int64) *RedisBudget {
	return &RedisBudget{rdb: rdb, cap: limit, prefix: "ratelimit:daily", ttl: 48 * time.Hour}
}

func (b *RedisBudget) key(day string) string {
	return fmt.Sprintf("%s:%s", b.prefix, day)
}

func (b *RedisBudget) Cap() int64 { return b.cap }

func (b *RedisBudget) Reserve(ctx context.Context, day string) (bool, error) {
	key := b.key(day)
	n, err := b.rdb.Incr(ctx, key).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to increment daily budget")
		return false, errx.WrapRedis(err)
	}
	if n == 1 {
		if err := b.rdb.Expire(ctx, key, b.ttl).Err(); err != nil {
			logx.Warn().Err(err).Str("key", key).Dur("ttl", b.ttl).Msg("failed to set TTL on daily budget key")
		}
	}
	if n > b.cap {
		if err := b.rdb.Decr(ctx, key).Err(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to roll back daily budget overshoot")
			return false, errx.WrapRedis(err)
		}
		return false, nil
	}
	return true, nil
}

func (b *RedisBudget) Release(ctx context.Context, day string) error {
	key := b.key(day)
	if err := b.rdb.Decr(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to release daily budget reservation")
		return errx.WrapRedis(err)
	}
	return nil
}

func (b *RedisBudget) Used(ctx context.Context, day string) (int64, error) {
	key := b.key(day)
	n, err := b.rdb.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to read daily budget")
		return 0, errx.WrapRedis(err)
	}
	return n, nil
}

var (
	_ DailyBudget = (*MemoryBudget)(nil)
	_ DailyBudget = (*RedisBudget)(nil)
)
