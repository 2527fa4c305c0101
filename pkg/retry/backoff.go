package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff calculates the delay before a retry. Attempt starts at 1 for the
// first retry. Implementations must be safe for concurrent use.
type Backoff interface {
	NextInterval(attempt int) time.Duration
}

// ExponentialBackoff grows the delay geometrically with optional jitter:
// min(Initial * Multiplier^(attempt-1) * (1 ± Jitter), Max).
type ExponentialBackoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.Initial
	if initial == 0 {
		initial = 500 * time.Millisecond
	}
	maxInterval := e.Max
	if maxInterval == 0 {
		maxInterval = 5 * time.Second
	}
	multiplier := e.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if e.Jitter > 0 {
		interval *= 1 + (rand.Float64()*2-1)*e.Jitter
	}
	if interval > float64(maxInterval) {
		interval = float64(maxInterval)
	}
	return time.Duration(interval)
}

// LinearBackoff returns min(Interval * attempt, Max).
type LinearBackoff struct {
	Interval time.Duration
	Max      time.Duration
}

func (l LinearBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	interval := l.Interval
	if interval == 0 {
		interval = time.Second
	}
	delay := interval * time.Duration(attempt)
	if l.Max > 0 && delay > l.Max {
		delay = l.Max
	}
	return delay
}

// FixedBackoff returns the same delay for every retry.
type FixedBackoff struct {
	Interval time.Duration
}

func (f FixedBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}
