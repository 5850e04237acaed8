package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestRateLimiter_ZeroConfigUsesDefaults(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{})
	assert.True(t, r.Allow())
}

func TestRateLimiter_BackoffBlocksAllow(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})

	r.RecordRateLimitError(30)
	assert.False(t, r.Allow())
}

func TestRateLimiter_WaitHonoursContextDuringBackoff(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})
	r.RecordRateLimitError(60)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_WaitPassesWhenClear(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx))
}
