package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrExhausted = errors.New("retry attempts exhausted")

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the production SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoSleep returns immediately. Used in tests.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Policy bounds how many times an operation runs and how long to wait between runs.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	Sleep       SleepFunc
}

// DefaultPolicy runs an operation up to three times waiting 500ms and then 1s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff{Initial: 500 * time.Millisecond, Max: 5 * time.Second, Multiplier: 2},
		Sleep:       Sleep,
	}
}

// Config is the env-driven form of Policy.
type Config struct {
	MaxAttempts int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`
	Initial     time.Duration `env:"RETRY_INITIAL_INTERVAL" envDefault:"500ms"`
	Max         time.Duration `env:"RETRY_MAX_INTERVAL" envDefault:"5s"`
	Multiplier  float64       `env:"RETRY_MULTIPLIER" envDefault:"2"`
	Jitter      float64       `env:"RETRY_JITTER" envDefault:"0"`
}

// NewPolicy builds an exponential Policy from cfg.
func NewPolicy(cfg Config) Policy {
	return Policy{
		MaxAttempts: cfg.MaxAttempts,
		Backoff: ExponentialBackoff{
			Initial:    cfg.Initial,
			Max:        cfg.Max,
			Multiplier: cfg.Multiplier,
			Jitter:     cfg.Jitter,
		},
		Sleep: Sleep,
	}
}

// Do runs fn until it returns nil or MaxAttempts runs have failed. fn receives
// the 1-based attempt number. Do returns the number of attempts made; on
// exhaustion the error wraps both ErrExhausted and the last failure. A done
// context stops the loop between attempts.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) (int, error) {
	maxAttempts := max(p.MaxAttempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 && p.Backoff != nil {
			if err := sleep(ctx, p.Backoff.NextInterval(attempt-1)); err != nil {
				return attempt - 1, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt-1, errors.Join(lastErr, err))
			}
		}
		if lastErr = fn(ctx, attempt); lastErr == nil {
			return attempt, nil
		}
	}
	return maxAttempts, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, maxAttempts, lastErr)
}
