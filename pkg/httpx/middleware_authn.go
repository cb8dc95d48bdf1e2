package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/directory/pkg/jwtx"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

// SessionChecker reports whether a session id is still live.
type SessionChecker interface {
	Active(ctx context.Context, sid string) (bool, error)
}

// AuthnMiddleware verifies an optional bearer token. Requests without an
// Authorization header continue anonymously; a present but invalid,
// expired or revoked token is rejected with 401.
func AuthnMiddleware(v jwtx.Verifier, sessions SessionChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "malformed authorization header")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", slogx.CategoryKey, "auth", "err", err)
				return
			}

			if sessions != nil {
				ok, err := sessions.Active(ctx, claims.SID)
				if err != nil {
					log.Error("session lookup failed", slogx.CategoryKey, "auth", "err", err)
					WriteError(w, http.StatusInternalServerError, "server_error", "session lookup failed")
					return
				}
				if !ok {
					writeBearerError(w, "session revoked")
					return
				}
			}

			ctx = contextWithAuth(ctx, claims)
			ctx = slogx.WithContext(ctx, log.With("user_id", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}

// BearerToken extracts the raw bearer token from the request, or "".
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}
