// Package server throttles inbound events per connection with a token
// bucket, so one noisy socket cannot flood its room through the hub.
package server

import (
	"sync"
	"time"
)

// rateLimiter is a continuously refilled token bucket. A full bucket of
// capacity tokens is granted up front; every allowed event spends one.
type rateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
}

// newRateLimiter sizes the bucket at capacity tokens, refilled over the
// given interval. Non-positive parameters fall back to one token per second.
func newRateLimiter(capacity int, interval time.Duration) *rateLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	return &rateLimiter{
		tokens:   float64(capacity),
		capacity: float64(capacity),
		perSec:   float64(capacity) / interval.Seconds(),
		last:     time.Now(),
	}
}

// allow spends a token if one is available.
func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if elapsed := now.Sub(rl.last).Seconds(); elapsed > 0 {
		rl.tokens = min(rl.tokens+elapsed*rl.perSec, rl.capacity)
	}
	rl.last = now

	if rl.tokens < 1 {
		return false
	}
	rl.tokens--
	return true
}
