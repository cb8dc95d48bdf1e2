package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/debug"
	"github.com/aussiebroadwan/directory/internal/directory/media"
	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/internal/directory/sessions"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/pkg/httpx"
	"github.com/aussiebroadwan/directory/pkg/jwtx"
	"github.com/aussiebroadwan/directory/pkg/slogx"

	_ "github.com/aussiebroadwan/directory/api/directory" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options carries the dependencies shared by every handler.
type Options struct {
	Store    store.Store
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Sessions sessions.Registry

	// Photos is optional; without it the photo routes answer 404.
	Photos        media.Store
	PhotoMaxBytes int64

	// Pingers are extra readiness checks keyed by name (e.g. "sessions").
	Pingers map[string]Pinger

	SessionTTL time.Duration
	Issuer     string
	Version    string
	RateLimits httpx.RateLimitProfiles
	Logger     *slog.Logger
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	opts      Options
	startTime time.Time

	AuthService     *service.AuthService
	BusinessService *service.BusinessService
	ReviewService   *service.ReviewService
	AdminService    *service.AdminService
	DebugService    *debug.Service
}

func NewRouter(opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PhotoMaxBytes <= 0 {
		opts.PhotoMaxBytes = media.DefaultMaxBytes
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = jwtx.DefaultSessionTTL
	}
	r := &Router{
		Mux:       http.NewServeMux(),
		opts:      opts,
		startTime: time.Now(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(opts.Logger),
	}
	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSystem()
	r.registerAuth()
	r.registerAccount()
	r.registerBusinesses()
	r.registerReviews()
	r.registerPhotos()
	r.registerAdmin()
	r.registerDebug()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Directory API
//	@version		0.1.0
//	@description	Accessible, LGBTQ+-friendly business directory: accounts, listings, reviews and owner responses.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/directory
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// public wraps anonymous endpoints. A bearer token is still verified when
// present so per-user limits apply.
func (r *Router) public(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.opts.Verifier, r.opts.Sessions),
		httpx.RateLimitByIP(limit),
	)
}

// secured wraps endpoints that act on behalf of a signed-in user. The
// services decide what a missing session means.
func (r *Router) secured(h sessionHandler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(r.withSession(h),
		httpx.AuthnMiddleware(r.opts.Verifier, r.opts.Sessions),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerSystem() {
	lenient := r.opts.RateLimits.Lenient

	r.Mux.Handle("GET /livez", httpx.Chain(LivezHandler(r.startTime, r.opts.Version), httpx.RateLimitByIP(lenient)))
	r.Mux.Handle("GET /readyz", httpx.Chain(ReadyzHandler(r.startTime, r.opts.Version, r.opts.Store, r.opts.Pingers), httpx.RateLimitByIP(lenient)))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		Signer:      r.opts.Signer,
		Sessions:    r.opts.Sessions,
		TTL:         r.opts.SessionTTL,
		Issuer:      r.opts.Issuer,
	}
	strict := r.opts.RateLimits.Strict

	// sign-up and sign-in are keyed by IP to slow credential stuffing
	r.Mux.Handle("POST /v1/auth/signup", httpx.ChainFunc(h.HandleSignUp, httpx.RateLimitByIP(strict)))
	r.Mux.Handle("POST /v1/auth/signin", httpx.ChainFunc(h.HandleSignIn, httpx.RateLimitByIP(strict)))
	r.Mux.Handle("POST /v1/auth/signout", r.secured(h.HandleSignOut, r.opts.RateLimits.Moderate))
}

func (r *Router) registerAccount() {
	h := &AccountHandler{
		AuthService:     r.AuthService,
		BusinessService: r.BusinessService,
		ReviewService:   r.ReviewService,
	}
	moderate := r.opts.RateLimits.Moderate

	r.Mux.Handle("GET /v1/me", r.secured(h.HandleMe, moderate))
	r.Mux.Handle("POST /v1/me/password", r.secured(h.HandleChangePassword, r.opts.RateLimits.Strict))
	r.Mux.Handle("GET /v1/me/profile", r.secured(h.HandleGetProfile, moderate))
	r.Mux.Handle("PATCH /v1/me/profile", r.secured(h.HandleUpdateProfile, moderate))
	r.Mux.Handle("GET /v1/me/businesses", r.secured(h.HandleMyBusinesses, moderate))
	r.Mux.Handle("GET /v1/me/reviews", r.secured(h.HandleMyReviews, moderate))
}

func (r *Router) registerBusinesses() {
	h := &BusinessHandler{BusinessService: r.BusinessService}
	moderate := r.opts.RateLimits.Moderate
	public := r.opts.RateLimits.Public

	r.Mux.Handle("GET /v1/businesses", r.public(http.HandlerFunc(h.HandleList), public))
	r.Mux.Handle("POST /v1/businesses", r.secured(h.HandleCreate, moderate))
	r.Mux.Handle("GET /v1/businesses/{id}", r.public(http.HandlerFunc(h.HandleGet), public))
	r.Mux.Handle("PATCH /v1/businesses/{id}", r.secured(h.HandleUpdate, moderate))
	r.Mux.Handle("DELETE /v1/businesses/{id}", r.secured(h.HandleDelete, moderate))
	r.Mux.Handle("POST /v1/businesses/{id}/verify", r.secured(h.HandleVerify, r.opts.RateLimits.Lenient))
}

func (r *Router) registerReviews() {
	h := &ReviewHandler{ReviewService: r.ReviewService}
	moderate := r.opts.RateLimits.Moderate

	r.Mux.Handle("GET /v1/businesses/{id}/reviews", r.public(http.HandlerFunc(h.HandleListForBusiness), r.opts.RateLimits.Public))
	r.Mux.Handle("POST /v1/businesses/{id}/reviews", r.secured(h.HandleAdd, moderate))
	r.Mux.Handle("PATCH /v1/reviews/{id}", r.secured(h.HandleUpdate, moderate))
	r.Mux.Handle("DELETE /v1/reviews/{id}", r.secured(h.HandleDelete, moderate))
	r.Mux.Handle("POST /v1/reviews/{id}/response", r.secured(h.HandleRespond, moderate))
	r.Mux.Handle("PATCH /v1/reviews/{id}/response", r.secured(h.HandleUpdateResponse, moderate))
	r.Mux.Handle("DELETE /v1/reviews/{id}/response", r.secured(h.HandleDeleteResponse, moderate))
}

func (r *Router) registerPhotos() {
	h := &PhotoHandler{Photos: r.opts.Photos, MaxBytes: r.opts.PhotoMaxBytes}

	r.Mux.Handle("POST /v1/photos", r.secured(h.HandleUpload, r.opts.RateLimits.Moderate))
	r.Mux.Handle("GET /v1/photos/{ref}", r.public(http.HandlerFunc(h.HandleGet), r.opts.RateLimits.Public))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{AdminService: r.AdminService}
	lenient := r.opts.RateLimits.Lenient

	r.Mux.Handle("GET /v1/admin/users", r.secured(h.HandleList, lenient))
	r.Mux.Handle("PATCH /v1/admin/users/{id}", r.secured(h.HandleUpdate, lenient))
	r.Mux.Handle("DELETE /v1/admin/users/{id}", r.secured(h.HandleDelete, lenient))
}

func (r *Router) registerDebug() {
	h := &DebugHandler{DebugService: r.DebugService}
	lenient := r.opts.RateLimits.Lenient

	r.Mux.Handle("GET /v1/debug/system", r.secured(h.HandleSystem, lenient))
	r.Mux.Handle("GET /v1/debug/stats", r.secured(h.HandleStats, lenient))
	r.Mux.Handle("GET /v1/debug/logs", r.secured(h.HandleLogs, lenient))
	r.Mux.Handle("DELETE /v1/debug/logs", r.secured(h.HandleClearLogs, lenient))
	r.Mux.Handle("GET /v1/debug/export", r.secured(h.HandleExport, lenient))
	r.Mux.Handle("POST /v1/debug/query", r.secured(h.HandleQuery, lenient))
	r.Mux.Handle("POST /v1/debug/perf", r.secured(h.HandlePerf, lenient))
	r.Mux.Handle("POST /v1/debug/import", r.secured(h.HandleImport, lenient))
}
