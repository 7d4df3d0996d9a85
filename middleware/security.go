package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://js.stripe.com https://cdnjs.cloudflare.com; " +
	"frame-src 'self' https://js.stripe.com https://checkout.stripe.com https://*.stripe.com; " +
	"connect-src 'self' https://api.stripe.com https://*.stripe.com; " +
	"img-src 'self' data: https://stripe.com https://*.stripe.com https://www.gstatic.com; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com https://cdnjs.cloudflare.com; " +
	"font-src 'self' https://fonts.gstatic.com https://cdnjs.cloudflare.com; " +
	"object-src 'none'; base-uri 'self'; form-action 'self' https://*.stripe.com; media-src 'self'"

// SecurityHeaders adds security-related headers to all responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Download-Options", "noopen")
		c.Header("Strict-Transport-Security", "max-age=15552000; includeSubDomains; preload")
		c.Header("Content-Security-Policy", contentSecurityPolicy)
		c.Header("Referrer-Policy", "same-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter stores token-bucket limiters per client IP.
type RateLimiter struct {
	ips   map[string]*limiterEntry
	mu    sync.Mutex
	rate  rate.Limit
	burst int
	ttl   time.Duration
}

// NewRateLimiter allows max requests per window for each IP. Idle entries
// are dropped after the window elapses.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		ips:   make(map[string]*limiterEntry),
		rate:  rate.Every(window / time.Duration(max)),
		burst: max,
		ttl:   window,
	}
}

// StartCleanup evicts stale entries every ttl until done is closed.
func (rl *RateLimiter) StartCleanup(done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(rl.ttl)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				rl.cleanup(time.Now())
			}
		}
	}()
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, e := range rl.ips {
		if now.Sub(e.lastSeen) > rl.ttl {
			delete(rl.ips, ip)
		}
	}
}

// GetLimiter returns the rate limiter for the given IP
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.ips[ip]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.ips[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.ips)
}

// RateLimit rejects requests over the limiter's budget with 429 and message.
func RateLimit(limiter *RateLimiter, message string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			logger.Warn("Rate limit exceeded", zap.String("client_ip", ip), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": message})
			return
		}
		c.Next()
	}
}
