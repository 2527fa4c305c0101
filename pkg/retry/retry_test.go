package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkout/pkg/retry"
)

type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func TestPolicy_Do(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	t.Run("stops at first success", func(t *testing.T) {
		t.Parallel()
		rec := &recordingSleep{}
		p := retry.DefaultPolicy()
		p.Sleep = rec.sleep

		calls := 0
		n, err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
			calls++
			if attempt < 2 {
				return errBoom
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 2, calls)
		assert.Equal(t, []time.Duration{500 * time.Millisecond}, rec.delays)
	})

	t.Run("exhausts after max attempts", func(t *testing.T) {
		t.Parallel()
		rec := &recordingSleep{}
		p := retry.DefaultPolicy()
		p.Sleep = rec.sleep

		calls := 0
		n, err := p.Do(context.Background(), func(context.Context, int) error {
			calls++
			return errBoom
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, retry.ErrExhausted)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 3, n)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, rec.delays)
	})

	t.Run("first attempt success does not sleep", func(t *testing.T) {
		t.Parallel()
		rec := &recordingSleep{}
		p := retry.DefaultPolicy()
		p.Sleep = rec.sleep

		n, err := p.Do(context.Background(), func(context.Context, int) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Empty(t, rec.delays)
	})

	t.Run("zero max attempts runs once", func(t *testing.T) {
		t.Parallel()
		p := retry.Policy{Sleep: retry.NoSleep}

		calls := 0
		_, err := p.Do(context.Background(), func(context.Context, int) error {
			calls++
			return errBoom
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops between attempts", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		p := retry.DefaultPolicy()
		p.Sleep = retry.NoSleep

		calls := 0
		n, err := p.Do(ctx, func(context.Context, int) error {
			calls++
			cancel()
			return errBoom
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, calls)
	})
}

func TestSleep(t *testing.T) {
	t.Parallel()

	require.NoError(t, retry.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, retry.Sleep(ctx, time.Hour), context.Canceled)
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	exp := retry.ExponentialBackoff{Initial: 100 * time.Millisecond, Max: time.Second, Multiplier: 2}
	assert.Equal(t, time.Duration(0), exp.NextInterval(0))
	assert.Equal(t, 100*time.Millisecond, exp.NextInterval(1))
	assert.Equal(t, 200*time.Millisecond, exp.NextInterval(2))
	assert.Equal(t, 800*time.Millisecond, exp.NextInterval(4))
	assert.Equal(t, time.Second, exp.NextInterval(10))

	jittered := retry.ExponentialBackoff{Initial: 100 * time.Millisecond, Max: time.Second, Multiplier: 2, Jitter: 0.5}
	for range 20 {
		d := jittered.NextInterval(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}

	lin := retry.LinearBackoff{Interval: time.Second, Max: 2 * time.Second}
	assert.Equal(t, time.Second, lin.NextInterval(1))
	assert.Equal(t, 2*time.Second, lin.NextInterval(3))

	fixed := retry.FixedBackoff{Interval: time.Second}
	assert.Equal(t, time.Second, fixed.NextInterval(5))
	assert.Equal(t, time.Duration(0), fixed.NextInterval(0))
}

func TestNewPolicy(t *testing.T) {
	t.Parallel()

	p := retry.NewPolicy(retry.Config{MaxAttempts: 5, Initial: time.Second, Max: 10 * time.Second, Multiplier: 3})
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 3*time.Second, p.Backoff.NextInterval(2))
	assert.NotNil(t, p.Sleep)
}
