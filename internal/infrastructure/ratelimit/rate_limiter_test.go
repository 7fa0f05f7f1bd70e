package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageThrottleIsPerUser(t *testing.T) {
	rl := NewMessageThrottle(3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("alice"), "message %d", i)
	}
	assert.False(t, rl.Allow("alice"))
	assert.True(t, rl.Allow("bob"))
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	rl := NewMessageThrottle(5)
	rl.Allow("alice")
	rl.Allow("bob")

	rl.Cleanup(time.Hour)
	assert.Equal(t, 2, rl.size())

	rl.entries["alice"].lastSeen = time.Now().Add(-2 * time.Hour)
	rl.Cleanup(time.Hour)
	assert.Equal(t, 1, rl.size())
}

func TestNonPositiveRateFallsBack(t *testing.T) {
	rl := NewMessageThrottle(0)
	assert.Equal(t, 10, rl.burst)
}
