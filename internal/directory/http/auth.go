package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/internal/directory/sessions"
	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/aussiebroadwan/directory/pkg/httpx"
	"github.com/aussiebroadwan/directory/pkg/jwtx"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

// AuthHandler issues and revokes session tokens.
type AuthHandler struct {
	AuthService *service.AuthService
	Signer      jwtx.Signer
	Sessions    sessions.Registry
	TTL         time.Duration
	Issuer      string
}

// HandleSignUp handles POST /v1/auth/signup
//
//	@Summary		Sign Up
//	@Description	Registers an active account and signs it in. Role "admin" is only accepted while no admin exists.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		directorysdk.SignUpRequest		true	"email, password, displayName, role"
//	@Success		201		{object}	directorysdk.SessionResponse	"token and user"
//	@Failure		400		{object}	httpx.ErrorBody					"error, error_description"
//	@Failure		403		{object}	httpx.ErrorBody					"error, error_description"
//	@Failure		409		{object}	httpx.ErrorBody					"error, error_description"
//	@Router			/v1/auth/signup [post].
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req directorysdk.SignUpRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	sess := service.NewSession()
	u, err := h.AuthService.SignUp(r.Context(), sess, req.Email, req.Password, req.DisplayName, domain.Role(req.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.issue(w, r, sess, u, http.StatusCreated)
}

// HandleSignIn handles POST /v1/auth/signin
//
//	@Summary		Sign In
//	@Description	Authenticates by email and password. Unknown emails and wrong passwords both answer invalid_credentials.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		directorysdk.SignInRequest		true	"email, password"
//	@Success		200		{object}	directorysdk.SessionResponse	"token and user"
//	@Failure		401		{object}	httpx.ErrorBody					"error, error_description"
//	@Failure		403		{object}	httpx.ErrorBody					"account_suspended or account_inactive"
//	@Router			/v1/auth/signin [post].
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req directorysdk.SignInRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	sess := service.NewSession()
	u, err := h.AuthService.SignIn(r.Context(), sess, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.issue(w, r, sess, u, http.StatusOK)
}

// HandleSignOut handles POST /v1/auth/signout
//
//	@Summary		Sign Out
//	@Description	Revokes the presented session token. Signing out twice is harmless.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204
//	@Router			/v1/auth/signout [post].
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	sid := sess.ID()
	h.AuthService.SignOut(r.Context(), sess)

	if sid != "" && h.Sessions != nil {
		if err := h.Sessions.Revoke(r.Context(), sid); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// issue registers the session id and writes a signed token for it.
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, sess *service.Session, u domain.User, status int) {
	ctx := r.Context()
	sid := sess.ID()

	if h.Sessions != nil {
		if err := h.Sessions.Register(ctx, sid, u.ID, h.TTL); err != nil {
			writeError(w, r, err)
			return
		}
	}

	claims := jwtx.NewSessionClaims(u.ID, sid, string(u.Role), u.Email, u.DisplayName, h.TTL, h.Issuer, time.Now())
	token, err := h.Signer.Sign(claims)
	if err != nil {
		h.revoke(ctx, sid)
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, status, directorysdk.SessionResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(claims.TTL(time.Now()).Seconds()),
		SessionID: sid,
		User:      toUser(u),
	})
}

func (h *AuthHandler) revoke(ctx context.Context, sid string) {
	if h.Sessions == nil {
		return
	}
	if err := h.Sessions.Revoke(ctx, sid); err != nil {
		slogx.Category(ctx, "auth").Warn("failed to revoke session", slog.String("sid", sid), slog.Any("error", err))
	}
}

func toUser(u domain.User) directorysdk.User {
	return directorysdk.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
		Profile:     u.Profile,
		Status:      string(u.Status),
		AdminNotes:  u.AdminNotes,
		UpdatedAt:   u.UpdatedAt,
	}
}
