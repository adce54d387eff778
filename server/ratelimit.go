package server

import (
	"sync"
	"time"
)

// RateLimiter is a simple in-memory sliding-window limiter keyed by client.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	requests map[string][]time.Time
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		window:   window,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records a request for key and reports whether it is within the
// limit, along with the remaining budget.
func (l *RateLimiter) Allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)

	kept := l.requests[key][:0]
	for _, ts := range l.requests[key] {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.requests[key] = kept
		return false, 0
	}

	l.requests[key] = append(kept, now)
	return true, l.limit - len(kept) - 1
}

// Reset clears the window for one key, or all keys when key is empty.
func (l *RateLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if key == "" {
		l.requests = make(map[string][]time.Time)
		return
	}
	delete(l.requests, key)
}
