package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles login attempts per username so a credential-stuffing
// loop cannot hammer the plaintext comparison path.
type Limiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// NewLimiter creates a login limiter.
// attemptsPerMinute: sustained attempts allowed per username (e.g. 10)
// burst: attempts allowed back-to-back (e.g. 5)
func NewLimiter(attemptsPerMinute int, burst int) *Limiter {
	r := rate.Limit(float64(attemptsPerMinute) / 60.0)

	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
}

// limiterFor returns the rate limiter for a specific username, creating
// it lazily on first attempt.
func (l *Limiter) limiterFor(username string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[username]
	if !exists {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[username] = limiter
	}

	return limiter
}

// Allow checks whether a login attempt for the username may proceed.
func (l *Limiter) Allow(username string) bool {
	return l.limiterFor(username).Allow()
}

// Tokens returns the current number of available attempts for a username.
func (l *Limiter) Tokens(username string) float64 {
	return l.limiterFor(username).Tokens()
}
