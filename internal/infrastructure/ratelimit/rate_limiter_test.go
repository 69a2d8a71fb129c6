package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter(Policy{PerMinute: 60, Burst: 5}, map[string]Policy{
		"send_message": {PerMinute: 6, Burst: 2},
	})
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	allowed, _ := rl.Allow("4", "send_message")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("4", "send_message")
	assert.True(t, allowed)

	allowed, wait := rl.Allow("4", "send_message")
	assert.False(t, allowed)
	assert.InDelta(t, float64(10*time.Second), float64(wait), float64(time.Millisecond))

	// Other users and actions have their own buckets.
	allowed, _ = rl.Allow("1", "send_message")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("4", "join_room")
	assert.True(t, allowed)

	now = now.Add(11 * time.Second)
	allowed, _ = rl.Allow("4", "send_message")
	assert.True(t, allowed)
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(Policy{PerMinute: 1, Burst: 1}, nil)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	allowed, _ := rl.Allow("4", "x")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("4", "x")
	assert.False(t, allowed)

	now = now.Add(2 * time.Hour)
	rl.Cleanup(time.Hour)
	assert.Empty(t, rl.buckets)
}

func TestZeroRateIsUnlimited(t *testing.T) {
	rl := NewRateLimiter(Policy{}, nil)
	for i := 0; i < 100; i++ {
		allowed, _ := rl.Allow("4", "send_message")
		assert.True(t, allowed)
	}
}
