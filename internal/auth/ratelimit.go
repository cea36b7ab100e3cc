package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles failed login attempts per IP+username pair. Each
// pair owns a token bucket holding MaxAttempts tokens that refills over
// WindowDuration; every failure spends one token.
type RateLimiter struct {
	mu              sync.Mutex
	limiters        map[string]*rate.Limiter
	maxAttempts     int
	refill          rate.Limit
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // Failed attempts allowed in a burst (default: 5)
	WindowDuration  time.Duration // Time for a drained bucket to refill (default: 15m)
	CleanupInterval time.Duration // How often to drop full buckets (default: 5m)
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		limiters:        make(map[string]*rate.Limiter),
		maxAttempts:     cfg.MaxAttempts,
		refill:          rate.Every(cfg.WindowDuration / time.Duration(cfg.MaxAttempts)),
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *RateLimiter) key(ip, username string) string {
	return ip + ":" + username
}

// Allow reports whether another login attempt may be made. It does not
// spend a token. When the answer is no, retryAfter says when one will be
// available again.
func (rl *RateLimiter) Allow(ip, username string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.limiters[rl.key(ip, username)]
	if !ok {
		return true, 0
	}

	now := rl.now()
	if lim.TokensAt(now) >= 1 {
		return true, 0
	}
	return false, rl.waitFor(lim, now)
}

// RecordFailure spends one token for a failed attempt and reports whether
// the pair is now throttled.
func (rl *RateLimiter) RecordFailure(ip, username string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	k := rl.key(ip, username)
	lim, ok := rl.limiters[k]
	if !ok {
		lim = rate.NewLimiter(rl.refill, rl.maxAttempts)
		rl.limiters[k] = lim
	}

	now := rl.now()
	lim.AllowN(now, 1)
	if lim.TokensAt(now) >= 1 {
		return false, 0
	}
	return true, rl.waitFor(lim, now)
}

// RecordSuccess forgets the failures of a pair after a successful login.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.limiters, rl.key(ip, username))
	rl.mu.Unlock()
}

// waitFor returns the delay until the next token without consuming it.
func (rl *RateLimiter) waitFor(lim *rate.Limiter, now time.Time) time.Duration {
	r := lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return delay
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup drops buckets that have refilled completely.
func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, lim := range rl.limiters {
		if lim.TokensAt(now) >= float64(rl.maxAttempts) {
			delete(rl.limiters, k)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
