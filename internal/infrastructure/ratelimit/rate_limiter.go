package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rewear/internal/infrastructure/metrics"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key.
type RateLimiter struct {
	name    string
	limit   rate.Limit
	burst   int
	entries map[string]*entry
	mutex   sync.Mutex
}

func NewRateLimiter(name string, limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		name:    name,
		limit:   limit,
		burst:   burst,
		entries: make(map[string]*entry),
	}
}

// NewMessageThrottle allows perMinute swap messages per user, refilled evenly across the minute.
func NewMessageThrottle(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return NewRateLimiter("swap_message", rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mutex.Lock()
	e, ok := rl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = e
	}
	e.lastSeen = time.Now()
	rl.mutex.Unlock()

	if !e.limiter.Allow() {
		metrics.RateLimited(rl.name)
		return false
	}
	return true
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for key, e := range rl.entries {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(rl.entries, key)
		}
	}
}

func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (rl *RateLimiter) size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.entries)
}
