package http

import (
	"net/http"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/aussiebroadwan/directory/pkg/httpx"
)

// AccountHandler serves the signed-in user's own records.
type AccountHandler struct {
	AuthService     *service.AuthService
	BusinessService *service.BusinessService
	ReviewService   *service.ReviewService
}

// HandleMe handles GET /v1/me
//
//	@Summary		Current User
//	@Tags			Account
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	directorysdk.User
//	@Failure		401	{object}	httpx.ErrorBody	"no_session"
//	@Router			/v1/me [get].
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	u, err := h.AuthService.GetCurrentUser(sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleChangePassword handles POST /v1/me/password
//
//	@Summary		Change Password
//	@Tags			Account
//	@Accept			json
//	@Security		BearerAuth
//	@Param			request	body	directorysdk.ChangePasswordRequest	true	"currentPassword, newPassword"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"invalid_request"
//	@Failure		401	{object}	httpx.ErrorBody	"invalid_credentials or no_session"
//	@Router			/v1/me/password [post].
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	var req directorysdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.AuthService.ChangePassword(r.Context(), sess, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetProfile handles GET /v1/me/profile
//
//	@Summary		Get Profile
//	@Tags			Account
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	map[string]any
//	@Router			/v1/me/profile [get].
func (h *AccountHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	p, err := h.AuthService.GetProfile(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandleUpdateProfile handles PATCH /v1/me/profile
//
//	@Summary		Update Profile
//	@Description	Shallow-merges the body into the stored profile; new keys overwrite old ones.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		map[string]any	true	"partial profile"
//	@Success		200		{object}	map[string]any
//	@Router			/v1/me/profile [patch].
func (h *AccountHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	var partial domain.Document
	if err := httpx.DecodeJSON(w, r, &partial); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := h.AuthService.UpdateProfile(r.Context(), sess, partial)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// HandleMyBusinesses handles GET /v1/me/businesses
//
//	@Summary		My Businesses
//	@Tags			Account
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	directorysdk.Business
//	@Router			/v1/me/businesses [get].
func (h *AccountHandler) HandleMyBusinesses(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	out, err := h.BusinessService.GetMyBusinesses(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list(out))
}

// HandleMyReviews handles GET /v1/me/reviews
//
//	@Summary		My Reviews
//	@Tags			Account
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	directorysdk.Review
//	@Router			/v1/me/reviews [get].
func (h *AccountHandler) HandleMyReviews(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	out, err := h.ReviewService.GetMyReviews(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list(out))
}

// list keeps empty results encoding as [] rather than null.
func list[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
