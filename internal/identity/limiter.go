package identity

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// signInLimiter throttles sign-in attempts per email address.
type signInLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func newSignInLimiter(perMinute, burst int) *signInLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &signInLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}
}

// allow reports whether another attempt for email may proceed. A nil limiter allows everything.
func (l *signInLimiter) allow(email string) bool {
	if l == nil {
		return true
	}
	key := strings.ToLower(strings.TrimSpace(email))

	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}
