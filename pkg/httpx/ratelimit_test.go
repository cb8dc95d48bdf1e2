package httpx_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/directory/pkg/httpx"
	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"extracts from RemoteAddr", nil, "192.168.1.1"},
		{"prefers X-Forwarded-For", map[string]string{"X-Forwarded-For": "203.0.113.1, 192.168.1.1"}, "203.0.113.1"},
		{"uses X-Real-IP if X-Forwarded-For absent", map[string]string{"X-Real-IP": "203.0.113.2"}, "203.0.113.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestFrom("192.168.1.1:12345")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.IPKeyExtractor(req))
		})
	}
}

func TestCompositeKeyExtractor(t *testing.T) {
	userFromHeader := func(r *http.Request) string { return r.Header.Get("X-User") }
	extractor := httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, userFromHeader)

	t.Run("combines multiple extractors", func(t *testing.T) {
		req := requestFrom("192.168.1.1:12345")
		req.Header.Set("X-User", "alice")
		require.Equal(t, "192.168.1.1:alice", extractor(req))
	})

	t.Run("skips empty values", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", extractor(requestFrom("192.168.1.1:12345")))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 3, Window: time.Minute, Burst: 3,
		}, httpx.IPKeyExtractor)(okHandler())

		for i := range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
		require.Contains(t, rec.Body.String(), "error_description")
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{
			RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
		})(okHandler())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.2:1"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
		}, func(*http.Request) string { return "" })(okHandler())

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("zero config disables limiting", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{})(okHandler())
		for range 10 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitByUser(t *testing.T) {
	h := httpx.RateLimitByUser(httpx.RateLimitConfig{
		RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
	})(okHandler())

	withUser := func(id string) *http.Request {
		req := requestFrom("10.0.0.1:1")
		return req.WithContext(context.WithValue(req.Context(), httpx.CtxKeyUserID, id))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withUser("alice"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withUser("alice"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withUser("bob"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDefaultRateLimits(t *testing.T) {
	p := httpx.DefaultRateLimits()

	for name, config := range map[string]httpx.RateLimitConfig{
		"strict": p.Strict, "moderate": p.Moderate, "lenient": p.Lenient, "public": p.Public,
	} {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, config.RequestsPerWindow)
			require.Positive(t, config.Window)
			require.Positive(t, config.Burst)
		})
	}

	require.Less(t, p.Strict.RequestsPerWindow, p.Moderate.RequestsPerWindow)
	require.Less(t, p.Moderate.RequestsPerWindow, p.Lenient.RequestsPerWindow)
	require.Less(t, p.Lenient.RequestsPerWindow, p.Public.RequestsPerWindow)
}

func TestRateLimitProfiles_FromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "50")
	t.Setenv("RATELIMIT_STRICT_WINDOW", "30s")
	t.Setenv("RATELIMIT_PUBLIC_BURST", "7")

	p := httpx.DefaultRateLimits()
	require.NoError(t, env.ParseWithOptions(&p, env.Options{Prefix: "RATELIMIT_"}))

	require.Equal(t, 50, p.Strict.RequestsPerWindow)
	require.Equal(t, 30*time.Second, p.Strict.Window)
	require.Equal(t, 5, p.Strict.Burst)
	require.Equal(t, 7, p.Public.Burst)
	require.Equal(t, httpx.DefaultRateLimits().Moderate, p.Moderate)
}

func BenchmarkRateLimitManyIPs(b *testing.B) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{
		RequestsPerWindow: 1000000, Window: time.Minute, Burst: 1000,
	})(okHandler())

	for i := 0; b.Loop(); i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom(fmt.Sprintf("192.168.%d.%d:12345", i%255, (i/255)%255)))
	}
}
