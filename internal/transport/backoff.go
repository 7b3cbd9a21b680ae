package transport

import (
	"math"
	"time"
)

// Backoff computes the reconnection schedule. Delays grow geometrically
// from Base by Factor and are capped at Max; after MaxAttempts failed
// attempts the session goes offline.
type Backoff struct {
	Base        time.Duration
	Factor      float64
	Max         time.Duration
	MaxAttempts int
}

// DefaultBackoff matches the schedule the dashboard shipped with:
// 2s, 3s, 4.5s, ... capped at 30s, ten attempts.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:        2 * time.Second,
		Factor:      1.5,
		Max:         30 * time.Second,
		MaxAttempts: 10,
	}
}

// Delay returns the wait before the given attempt. Attempts are numbered
// from 1; the first attempt waits Base, with no jitter so the schedule
// is predictable in logs.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(b.Base) * math.Pow(b.Factor, float64(attempt-1)))
	if d > b.Max || d < 0 {
		return b.Max
	}
	return d
}

// Exhausted reports whether the attempt counter has used up the budget.
func (b Backoff) Exhausted(attempt int) bool {
	return attempt > b.MaxAttempts
}
