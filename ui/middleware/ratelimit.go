package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter stores rate limiters per IP address
type RateLimiter struct {
	limiters map[string]*entry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	ttl      time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter with the specified rate and burst.
// Entries idle for longer than ttl are dropped on the next lookup sweep.
func NewRateLimiter(rateLimit rate.Limit, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*entry),
		rate:     rateLimit,
		burst:    burst,
		ttl:      ttl,
	}
}

// Allow reports whether ip may make another request now
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.getLimiter(ip).Allow()
}

// getLimiter returns the rate limiter for the given IP, creating one if needed
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	e, exists := rl.limiters[ip]
	if !exists {
		rl.sweepLocked(now)
		e = &entry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	for ip, e := range rl.limiters {
		if now.Sub(e.lastSeen) > rl.ttl {
			delete(rl.limiters, ip)
		}
	}
}

// RateLimitMiddleware creates a middleware that rate limits requests by IP address
func RateLimitMiddleware(requestsPerMinute int, burst int) gin.HandlerFunc {
	rateLimit := rate.Every(time.Minute / time.Duration(requestsPerMinute))
	limiter := NewRateLimiter(rateLimit, burst, 15*time.Minute)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = c.RemoteIP()
		}

		if !limiter.Allow(ip) {
			if c.GetHeader("HX-Request") == "true" {
				c.Data(http.StatusTooManyRequests, "text/html; charset=utf-8",
					[]byte(`<div class="banner banner-error">Too many uploads. Please wait a moment and try again.</div>`))
			} else {
				c.JSON(http.StatusTooManyRequests, gin.H{
					"error": "rate limit exceeded",
					"code":  "RATE_LIMITED",
				})
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

// MaxBodySize caps the request body; larger uploads fail when the form is parsed
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)
		}
		c.Next()
	}
}
