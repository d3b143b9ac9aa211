package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimiter throttles per client IP, with tighter limits on payment endpoints.
// Provider webhooks are never throttled so that deliveries are not dropped.
type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             *sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	exemptPrefixes []string
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:            make(map[string]*rate.Limiter),
		blockedIPs:     make(map[string]time.Time),
		mu:             &sync.RWMutex{},
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		blockDuration:  time.Minute,
		exemptPrefixes: []string{"/webhooks/", "/webhook/"},
		endpointLimits: map[string]endpointLimit{
			// each charge wakes a physical terminal
			"/api/payments/terminal/initiate": {limit: rate.Every(2 * time.Second), burst: 3},
			"/api/payroll/sync":               {limit: rate.Every(5 * time.Second), burst: 2},
			"/api/auth/login":                 {limit: rate.Every(3 * time.Second), burst: 5},
		},
		now: time.Now,
	}
	return limiter
}

// RateLimit returns the echo middleware
func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestPath := c.Request().URL.Path
			for _, prefix := range r.exemptPrefixes {
				if strings.HasPrefix(requestPath, prefix) {
					return next(c)
				}
			}

			ip := c.RealIP()

			// Check if IP is blocked and handle expired blocks
			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if r.now().Before(blockUntil) {
					r.mu.Unlock()
					return c.JSON(http.StatusTooManyRequests, map[string]string{
						"message":    "IP address blocked due to too many requests",
						"retryAfter": blockUntil.Format(time.RFC3339),
					})
				}
				delete(r.blockedIPs, ip)
				r.resetLocked(ip)
			}
			r.mu.Unlock()

			key := ip
			limit, burst := r.defaultLimit, r.defaultBurst
			if el, ok := r.endpointLimits[c.Path()]; ok {
				key = ip + "|" + c.Path()
				limit, burst = el.limit, el.burst
			}

			if !r.getLimiter(key, limit, burst).Allow() {
				blockUntil := r.now().Add(r.blockDuration)
				r.mu.Lock()
				r.blockedIPs[ip] = blockUntil
				r.mu.Unlock()

				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"message":    "Too many requests",
					"retryAfter": blockUntil.Format(time.RFC3339),
				})
			}

			return next(c)
		}
	}
}

// resetLocked drops every limiter belonging to ip; r.mu must be held
func (r *RateLimiter) resetLocked(ip string) {
	for key := range r.ips {
		if key == ip || strings.HasPrefix(key, ip+"|") {
			delete(r.ips, key)
		}
	}
}

func (r *RateLimiter) getLimiter(key string, limit rate.Limit, burst int) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, exists := r.ips[key]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		r.ips[key] = limiter
	}
	return limiter
}
