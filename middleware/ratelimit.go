package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// attemptLimiter is a sliding window of request times per client key.
type attemptLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	hits   map[string][]time.Time
	calls  int
}

func newAttemptLimiter(limit int, window time.Duration, now func() time.Time) *attemptLimiter {
	return &attemptLimiter{limit: limit, window: window, now: now, hits: map[string][]time.Time{}}
}

// allow records an attempt for key. When the window is full it returns false
// and the time until the oldest attempt leaves the window.
func (l *attemptLimiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	l.calls++
	if l.calls%256 == 0 {
		l.sweep(cutoff)
	}

	recent := inWindow(l.hits[key], cutoff)
	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false, recent[0].Sub(cutoff)
	}
	l.hits[key] = append(recent, now)
	return true, 0
}

// sweep drops keys without attempts in the window. mu must be held.
func (l *attemptLimiter) sweep(cutoff time.Time) {
	for key, times := range l.hits {
		if len(inWindow(times, cutoff)) == 0 {
			delete(l.hits, key)
		}
	}
}

func inWindow(times []time.Time, cutoff time.Time) []time.Time {
	for i, t := range times {
		if t.After(cutoff) {
			return times[i:]
		}
	}
	return times[:0]
}

// LoginRateLimit allows at most maxAttempts requests per client IP within
// window and answers 429 beyond that. Used on /auth/login and /auth/register.
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	return rateLimit(newAttemptLimiter(maxAttempts, window, time.Now))
}

func rateLimit(l *attemptLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"statusCode": http.StatusTooManyRequests,
				"message":    "Too many attempts, please try again later",
				"error":      "Too Many Requests",
			})
			return
		}
		c.Next()
	}
}
