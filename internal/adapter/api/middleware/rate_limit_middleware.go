package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"rewear/internal/infrastructure/metrics"
	"rewear/pkg/errors"
	"rewear/pkg/logger"
)

type visitor struct {
	count       int
	windowStart time.Time
}

// RateLimiter allows a fixed number of requests per client IP in each window.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// allow counts the request and, when over the limit, reports when the window resets.
func (rl *RateLimiter) allow(key string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok || now.Sub(v.windowStart) >= rl.window {
		v = &visitor{windowStart: now}
		rl.visitors[key] = v
	}

	reset := v.windowStart.Add(rl.window)
	if v.count >= rl.limit {
		return false, 0, reset
	}
	v.count++
	return true, rl.limit - v.count, reset
}

func (rl *RateLimiter) RateLimitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			allowed, remaining, reset := rl.allow(ip)

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			header.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !allowed {
				retryAfter := int(math.Ceil(reset.Sub(rl.now()).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				header.Set("Retry-After", strconv.Itoa(retryAfter))
				metrics.RateLimited("http")
				logger.Warn("rate limit exceeded for %s on %s", ip, c.Request().URL.Path)
				return errors.TooManyRequests("Too many requests, please try again later")
			}

			return next(c)
		}
	}
}

// cleanup drops visitors whose window has expired.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.windowStart) >= rl.window {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(rl.window)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}
