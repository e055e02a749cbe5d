// Package ratelimit gates web-call creation with a per-identity hourly window
// and a global daily budget.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	errx "github.com/lapu-lapu-poc/server/internal/core/error"
	"github.com/lapu-lapu-poc/server/internal/model"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// DayLayout is the calendar-day key format, evaluated in process-local time.
const DayLayout = "2006-01-02"

// releaseTimeout bounds a reservation release once it is detached from the
// caller's context.
const releaseTimeout = 2 * time.Second

var (
	// ErrIdentityLimited is wrapped by rejections from the per-identity window.
	ErrIdentityLimited = errors.New("per-identity hourly limit reached")
	// ErrDailyLimited is wrapped by rejections from the global daily budget.
	ErrDailyLimited = errors.New("daily call budget exhausted")
)

const (
	identityLimitedMessage = "Too many call attempts. Please try again later."
	dailyLimitedMessage    = "Daily call limit reached. Please try again tomorrow."
)

// Limiter combines both gates. Check-and-increment is serialized by mu.
type Limiter struct {
	mu          sync.Mutex
	identity    *limiter.Limiter
	perIdentity int64
	daily       DailyBudget
	now         func() time.Time
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithClock overrides the clock used to compute the calendar day.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New wires a Limiter from an identity-window store and a daily budget.
func New(cfg model.RateLimitConfig, store limiter.Store, daily DailyBudget, opts ...Option) *Limiter {
	rate := limiter.Rate{Period: time.Hour, Limit: cfg.PerIdentityHourly}
	l := &Limiter{
		identity:    limiter.New(store, rate),
		perIdentity: cfg.PerIdentityHourly,
		daily:       daily,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewMemory keeps both gates in process memory.
func NewMemory(cfg model.RateLimitConfig, opts ...Option) *Limiter {
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "ratelimit:identity",
		CleanUpInterval: 10 * time.Minute,
	})
	return New(cfg, store, NewMemoryBudget(cfg.DailyCalls), opts...)
}

// NewRedis shares both gates through Redis.
func NewRedis(cfg model.RateLimitConfig, rdb *redis.Client, opts ...Option) (*Limiter, error) {
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   "ratelimit:identity",
		MaxRetry: 3,
	})
	if err != nil {
		return nil, errx.WrapRedis(err)
	}
	return New(cfg, store, NewRedisBudget(rdb, cfg.DailyCalls), opts...), nil
}

func (l *Limiter) day() string {
	return l.now().Format(DayLayout)
}

// release returns one daily reservation. It outlives ctx's cancellation so a
// client hanging up mid-request cannot leak the slot.
func (l *Limiter) release(ctx context.Context, day string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := l.daily.Release(ctx, day); err != nil {
		logx.Error().Err(err).Str("component", "ratelimit").Str("day", day).Msg("failed to release daily reservation")
	}
}

// Admission is a granted call-creation slot. Exactly one of Commit or Cancel
// should be called once the downstream call creation finishes.
type Admission struct {
	once    sync.Once
	limiter *Limiter
	day     string
}

// Commit keeps the daily reservation; the creation succeeded.
func (a *Admission) Commit() {
	a.once.Do(func() {})
}

// Cancel returns the daily reservation; the creation failed.
func (a *Admission) Cancel(ctx context.Context) {
	a.once.Do(func() {
		a.limiter.release(ctx, a.day)
	})
}

// Admit checks both gates for identity. Rejected attempts change no state.
func (l *Limiter) Admit(ctx context.Context, identity string) (*Admission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	peek, err := l.identity.Peek(ctx, identity)
	if err != nil {
		return nil, errx.WrapRedis(err)
	}
	if peek.Remaining <= 0 {
		logx.Info().Str("component", "ratelimit").Str("identity", identity).Int64("limit", peek.Limit).Msg("per-identity limit reached")
		return nil, errx.RateLimited(ErrIdentityLimited, identityLimitedMessage)
	}

	day := l.day()
	ok, err := l.daily.Reserve(ctx, day)
	if err != nil {
		return nil, err
	}
	if !ok {
		logx.Warn().Str("component", "ratelimit").Str("day", day).Int64("cap", l.daily.Cap()).Msg("daily call budget exhausted")
		return nil, errx.RateLimited(ErrDailyLimited, dailyLimitedMessage)
	}

	if _, err := l.identity.Get(ctx, identity); err != nil {
		l.release(ctx, day)
		return nil, errx.WrapRedis(err)
	}
	return &Admission{limiter: l, day: day}, nil
}

// Status is a read-only snapshot of both gates.
type Status struct {
	Day                    string `json:"day"`
	DailyUsed              int64  `json:"daily_used"`
	DailyLimit             int64  `json:"daily_limit"`
	DailyRemaining         int64  `json:"daily_remaining"`
	PerIdentityHourlyLimit int64  `json:"per_identity_hourly_limit"`
	Identity               string `json:"identity"`
	IdentityRemaining      int64  `json:"identity_remaining"`
}

// Status reports current usage without consuming anything.
func (l *Limiter) Status(ctx context.Context, identity string) (Status, error) {
	day := l.day()
	used, err := l.daily.Used(ctx, day)
	if err != nil {
		return Status{}, err
	}
	peek, err := l.identity.Peek(ctx, identity)
	if err != nil {
		return Status{}, errx.WrapRedis(err)
	}

	remaining := l.daily.Cap() - used
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Day:                    day,
		DailyUsed:              used,
		DailyLimit:             l.daily.Cap(),
		DailyRemaining:         remaining,
		PerIdentityHourlyLimit: l.perIdentity,
		Identity:               identity,
		IdentityRemaining:      peek.Remaining,
	}, nil
}
