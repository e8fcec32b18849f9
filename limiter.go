package scholarpage

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter rate-limits failed login attempts per IP address with one
// token bucket per IP: max attempts, refilled over window.
type LoginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*loginBucket
	limit   rate.Limit
	max     int
	window  time.Duration
}

type loginBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewLoginLimiter creates a LoginLimiter that allows max attempts per window.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		buckets: make(map[string]*loginBucket),
		limit:   rate.Limit(float64(max) / window.Seconds()),
		max:     max,
		window:  window,
	}
}

func (l *LoginLimiter) bucket(ip string, now time.Time) *rate.Limiter {
	// Idle buckets are full again, so dropping them changes nothing.
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.window {
			delete(l.buckets, k)
		}
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &loginBucket{lim: rate.NewLimiter(l.limit, l.max)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim
}

// Allow checks the limit and records an attempt in one step.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bucket(ip, time.Now()).Allow()
}

// Check returns true if the IP has not exceeded the rate limit.
// It does not record an attempt; call Record separately on failure.
func (l *LoginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	return l.bucket(ip, now).TokensAt(now) >= 1
}

// Record registers a failed login attempt for the given IP.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.bucket(ip, now).AllowN(now, 1)
}
