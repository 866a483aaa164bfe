package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"fileforge/internal/model"
)

// RateLimiter enforces per-API-key request rates: a token bucket for the
// per-minute limit and a counter for the per-day limit. Session traffic is
// not limited here. Limiters are kept in memory, so limits apply per process.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	stop     chan struct{}
	now      func() time.Time
}

type keyLimiter struct {
	limiter  *rate.Limiter
	rpm      int
	day      time.Time
	dayCount int
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter and starts a janitor that drops
// limiters idle for over an hour.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*keyLimiter),
		stop:     make(chan struct{}),
		now:      time.Now,
	}
	go rl.janitor()
	return rl
}

// Close stops the janitor goroutine.
func (rl *RateLimiter) Close() {
	close(rl.stop)
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
		}
		cutoff := rl.now().Add(-time.Hour)
		rl.mu.Lock()
		for id, kl := range rl.limiters {
			if kl.lastSeen.Before(cutoff) {
				delete(rl.limiters, id)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks both limits and reports a Retry-After value when denied.
// The token bucket is rebuilt when the key's RPM was updated, so a PATCH
// takes effect on the next request even for keys with steady traffic.
func (rl *RateLimiter) allow(key *model.APIKey) (bool, string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	kl, ok := rl.limiters[key.ID]
	if !ok {
		kl = &keyLimiter{}
		rl.limiters[key.ID] = kl
	}
	kl.lastSeen = rl.now()

	if key.RateLimitRPM > 0 {
		if kl.limiter == nil || kl.rpm != key.RateLimitRPM {
			kl.limiter = rate.NewLimiter(rate.Limit(float64(key.RateLimitRPM)/60.0), key.RateLimitRPM)
			kl.rpm = key.RateLimitRPM
		}
		if !kl.limiter.Allow() {
			return false, "60"
		}
	}

	if key.RateLimitRPD > 0 {
		day := rl.now().UTC().Truncate(24 * time.Hour)
		if !kl.day.Equal(day) {
			kl.day = day
			kl.dayCount = 0
		}
		if kl.dayCount >= key.RateLimitRPD {
			until := day.Add(24 * time.Hour).Sub(rl.now().UTC())
			return false, strconv.Itoa(int(until.Seconds()) + 1)
		}
		kl.dayCount++
	}

	return true, ""
}

// Handler returns the fiber middleware. It must run after Auth so the API
// key is available in locals.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := RequestAPIKey(c)
		if key == nil || (key.RateLimitRPM <= 0 && key.RateLimitRPD <= 0) {
			return c.Next()
		}
		if ok, retryAfter := rl.allow(key); !ok {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
