package http

import (
	"net/http"

	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/pkg/httpx"
)

// sessionHandler is a handler that acts for the request's session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *service.Session)

// withSession builds a per-request Session from the verified token claims.
// Requests without a token get an empty session.
func (r *Router) withSession(h sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		sess := service.NewSession()

		if claims, ok := httpx.ClaimsFromContext(req.Context()); ok {
			if _, err := r.AuthService.RestoreSession(req.Context(), sess, claims.SID, claims.Subject); err != nil {
				writeError(w, req, err)
				return
			}
		}
		h(w, req, sess)
	})
}
