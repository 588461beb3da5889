package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff_Bounds(t *testing.T) {
	base := 10 * time.Millisecond
	max := 200 * time.Millisecond

	for attempt := 1; attempt <= 10; attempt++ {
		d := Backoff(attempt, base, max)
		assert.Greater(t, d, time.Duration(0), "attempt %d", attempt)
		assert.LessOrEqual(t, d, max, "attempt %d", attempt)
	}
}

func TestBackoff_CeilingGrows(t *testing.T) {
	base := 10 * time.Millisecond
	max := time.Minute

	// The jittered value is bounded by the exponential ceiling.
	for attempt := 1; attempt <= 5; attempt++ {
		ceiling := base << uint(attempt-1)
		for i := 0; i < 50; i++ {
			assert.LessOrEqual(t, Backoff(attempt, base, max), ceiling)
		}
	}
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SleepContext(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepContext_Elapses(t *testing.T) {
	err := SleepContext(context.Background(), time.Millisecond)
	require.NoError(t, err)
}
