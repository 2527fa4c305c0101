package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidLimit    = errors.New("invalid limit")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrKeyRequired     = errors.New("key is required")
	ErrStoreRequired   = errors.New("store is required")
)

// Config is the env-driven limiter configuration.
type Config struct {
	Enabled  bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"10"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	Prefix   string        `env:"RATE_LIMIT_PREFIX" envDefault:"checkout:rl:"`
}

// Result contains the result of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Store keeps per-key counters that expire with their window.
type Store interface {
	// IncrementAndGet adds incr to key, starting a new window of length
	// window when the key does not exist, and returns the new count and the
	// time left in the window.
	IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Duration, error)
}

// FixedWindow allows Limit requests per Window per key.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewFixedWindow(store Store, cfg Config) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if cfg.Requests <= 0 {
		return nil, ErrInvalidLimit
	}
	if cfg.Window <= 0 {
		return nil, ErrInvalidInterval
	}
	return &FixedWindow{
		store:  store,
		limit:  cfg.Requests,
		window: cfg.Window,
		prefix: cfg.Prefix,
		now:    time.Now,
	}, nil
}

func (l *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	count, ttl, err := l.store.IncrementAndGet(ctx, l.prefix+key, 1, l.window)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = l.window
	}
	return &Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: max(l.limit-int(count), 0),
		ResetAt:   l.now().Add(ttl),
	}, nil
}
