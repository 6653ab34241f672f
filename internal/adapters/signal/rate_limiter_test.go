package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_CeilingWithinWindow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	assert.True(t, rl.Allow("coach-1"))
	assert.True(t, rl.Allow("coach-1"))
	assert.True(t, rl.Allow("coach-1"))
	assert.False(t, rl.Allow("coach-1"), "message past the ceiling must be denied")
	assert.False(t, rl.Allow("coach-1"))
}

func TestRateLimiter_WindowRollover(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("coach-1"))
	assert.True(t, rl.Allow("coach-1"))
	assert.False(t, rl.Allow("coach-1"))

	// After the window elapses the user starts over with count 1.
	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("coach-1"))
	assert.True(t, rl.Allow("coach-1"))
	assert.False(t, rl.Allow("coach-1"))
}

func TestRateLimiter_UsersDoNotShareWindows(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("coach-1"))
	assert.False(t, rl.Allow("coach-1"))
	assert.True(t, rl.Allow("coach-2"), "first-seen user starts a fresh window")
}
