package utils

import (
	"context"
	"math/rand"
	"time"
)

// Backoff returns the delay to wait before retry number attempt (1-based):
// exponential growth from base with full jitter, capped at max.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base << uint(attempt-1)
	if d > max || d <= 0 {
		d = max
	}
	// Full jitter keeps colliding retries from re-colliding.
	return time.Duration(rand.Int63n(int64(d)) + 1)
}

// SleepContext sleeps for d or until the context is done, whichever is first.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
