package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/directory/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters. The env tags let a
// caller embed it under a prefix, e.g. RATELIMIT_STRICT_REQUESTS.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int `env:"REQUESTS"`
	// Window is the time window for rate limiting
	Window time.Duration `env:"WINDOW"`
	// Burst allows for temporary bursts above the rate limit
	Burst int `env:"BURST"`
}

// RateLimitProfiles groups the limits applied to each class of endpoint.
type RateLimitProfiles struct {
	// Strict guards sign-in and sign-up against brute force.
	Strict RateLimitConfig `envPrefix:"STRICT_"`
	// Moderate guards authenticated writes.
	Moderate RateLimitConfig `envPrefix:"MODERATE_"`
	// Lenient guards admin and debug operations.
	Lenient RateLimitConfig `envPrefix:"LENIENT_"`
	// Public guards anonymous reads.
	Public RateLimitConfig `envPrefix:"PUBLIC_"`
}

// DefaultRateLimits returns the built-in profiles.
func DefaultRateLimits() RateLimitProfiles {
	return RateLimitProfiles{
		Strict:   RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5},
		Moderate: RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 30},
		Lenient:  RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100},
		Public:   RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000},
	}
}

// Disabled reports whether the config turns rate limiting off.
func (c RateLimitConfig) Disabled() bool {
	return c.RequestsPerWindow <= 0 || c.Window <= 0
}

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, user ID).
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request.
// It handles X-Forwarded-For and X-Real-IP headers for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// UserIDKeyExtractor extracts the user ID from the request context.
// Returns empty string if no user ID is found.
func UserIDKeyExtractor(r *http.Request) string {
	return UserIDFromContext(r.Context())
}

// CompositeKeyExtractor combines multiple key extractors with a separator,
// skipping extractors that yield nothing.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// rateLimiter manages rate limiters for different keys
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	actual, _ := rl.limiters.LoadOrStore(key, limiter)

	rl.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket is full again, at most once
// every five minutes.
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware creates a rate limiting middleware with the given configuration.
// The keyExtractor determines how requests are grouped for rate limiting.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	if config.Disabled() {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := config.Burst
	if burst <= 0 {
		burst = config.RequestsPerWindow
	}

	rl := &rateLimiter{
		rate:        rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:       burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request", slogx.CategoryKey, "http")
				next.ServeHTTP(w, r)
				return
			}

			limiter := rl.getLimiter(key)
			if !limiter.Allow() {
				// Peek at when the next token lands without consuming it.
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				retryAfter := max(int(delay.Seconds()), 1)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", config.Window.String())

				log.Warn("rate limit exceeded",
					slogx.CategoryKey, "http",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)

				WriteError(w, http.StatusTooManyRequests,
					"rate_limit_exceeded", "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP creates a rate limiter that limits by IP address only.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}

// RateLimitByUser creates a rate limiter that limits by authenticated user ID
// and IP. Anonymous requests are keyed by IP alone.
func RateLimitByUser(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, CompositeKeyExtractor(":",
		UserIDKeyExtractor,
		IPKeyExtractor,
	))
}
