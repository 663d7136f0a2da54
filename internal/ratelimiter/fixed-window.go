package ratelimiter

import (
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// FixedWindowRateLimiter counts hits per key inside a fixed window. Windows
// expire lazily on the next hit, so idle keys cost nothing but memory until
// Sweep removes them.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewFixedWindowLimiter(limit int, d time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  d,
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (rl *FixedWindowRateLimiter) WithClock(now func() time.Time) *FixedWindowRateLimiter {
	rl.now = now
	return rl
}

// Allow records a hit for key. When the limit is reached it reports false and
// how long until the window resets.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.clients[key] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count < rl.limit {
		w.count++
		return true, 0
	}

	return false, w.start.Add(rl.window).Sub(now)
}

// Reset forgets key, e.g. after a successful login.
func (rl *FixedWindowRateLimiter) Reset(key string) {
	rl.Lock()
	delete(rl.clients, key)
	rl.Unlock()
}

// Sweep drops expired windows.
func (rl *FixedWindowRateLimiter) Sweep() {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	for key, w := range rl.clients {
		if now.Sub(w.start) >= rl.window {
			delete(rl.clients, key)
		}
	}
}
