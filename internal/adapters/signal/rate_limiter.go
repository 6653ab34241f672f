package signal

import (
	"sync"
	"time"

	"github.com/coachkit/livechat/internal/domain"
)

// window is one user's fixed rate window, reinitialized lazily when a
// message arrives after resetAt instead of ticking down.
type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter caps inbound protocol messages per user per fixed
// window. Exceeding the ceiling is a soft rejection: the caller tells
// the sender and drops the message, the connection stays open.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[domain.UserID]*window
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		windows:  make(map[domain.UserID]*window),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Allow records one message from uid and reports whether it fits the
// active window. A first-seen user starts a fresh window.
func (rl *RateLimiter) Allow(uid domain.UserID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[uid]
	if !ok || now.After(w.resetAt) {
		rl.windows[uid] = &window{count: 1, resetAt: now.Add(rl.interval)}
		return true
	}
	w.count++
	return w.count <= rl.limit
}
