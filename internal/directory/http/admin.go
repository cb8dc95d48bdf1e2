package http

import (
	"net/http"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/aussiebroadwan/directory/pkg/httpx"
)

type AdminHandler struct {
	AdminService *service.AdminService
}

// HandleList handles GET /v1/admin/users
//
//	@Summary		List Users
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		directorysdk.User
//	@Failure		403	{object}	httpx.ErrorBody	"permission_denied"
//	@Router			/v1/admin/users [get].
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	users, err := h.AdminService.GetAllUsers(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]directorysdk.User, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdate handles PATCH /v1/admin/users/{id}
//
//	@Summary		Update User
//	@Description	Changes status, role or admin notes. Admins cannot suspend, deactivate or demote themselves.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"user id"
//	@Param			request	body		directorysdk.UserUpdateRequest	true	"fields to change"
//	@Success		200		{object}	directorysdk.User
//	@Failure		403		{object}	httpx.ErrorBody	"permission_denied"
//	@Router			/v1/admin/users/{id} [patch].
func (h *AdminHandler) HandleUpdate(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	var req directorysdk.UserUpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	upd := service.UserUpdate{AdminNotes: req.AdminNotes}
	if req.Status != nil {
		s := domain.Status(*req.Status)
		upd.Status = &s
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		upd.Role = &role
	}

	u, err := h.AdminService.UpdateUser(r.Context(), sess, r.PathValue("id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleDelete handles DELETE /v1/admin/users/{id}
//
//	@Summary		Delete User
//	@Description	The user's reviews are kept.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			id	path	string	true	"user id"
//	@Success		204
//	@Router			/v1/admin/users/{id} [delete].
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	if err := h.AdminService.DeleteUser(r.Context(), sess, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
