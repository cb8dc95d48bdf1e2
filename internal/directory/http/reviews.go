package http

import (
	"net/http"

	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/aussiebroadwan/directory/pkg/httpx"
)

type ReviewHandler struct {
	ReviewService *service.ReviewService
}

// HandleListForBusiness handles GET /v1/businesses/{id}/reviews
//
//	@Summary		List Reviews
//	@Tags			Reviews
//	@Produce		json
//	@Param			id	path	string	true	"business id"
//	@Success		200	{array}	directorysdk.Review
//	@Failure		404	{object}	httpx.ErrorBody	"not_found"
//	@Router			/v1/businesses/{id}/reviews [get].
func (h *ReviewHandler) HandleListForBusiness(w http.ResponseWriter, r *http.Request) {
	out, err := h.ReviewService.GetBusinessReviews(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list(out))
}

// HandleAdd handles POST /v1/businesses/{id}/reviews
//
//	@Summary		Add Review
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"business id"
//	@Param			request	body		directorysdk.ReviewRequest	true	"rating 1-5, comment, photos"
//	@Success		201		{object}	directorysdk.Review
//	@Failure		400		{object}	httpx.ErrorBody	"invalid_rating"
//	@Failure		404		{object}	httpx.ErrorBody	"not_found"
//	@Router			/v1/businesses/{id}/reviews [post].
func (h *ReviewHandler) HandleAdd(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	var req directorysdk.ReviewRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	rv, err := h.ReviewService.AddReview(r.Context(), sess, r.PathValue("id"), req.Rating, req.Comment, req.Photos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rv)
}

// HandleUpdate handles PATCH /v1/reviews/{id}
//
//	@Summary		Update Review
//	@Description	Author or admin.
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"review id"
//	@Param			request	body		directorysdk.ReviewRequest	true	"rating 1-5, comment, photos"
//	@Success		200		{object}	directorysdk.Review
//	@Failure		403		{object}	httpx.ErrorBody	"permission_denied"
//	@Router			/v1/reviews/{id} [patch].
func (h *ReviewHandler) HandleUpdate(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	var req directorysdk.ReviewRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	rv, err := h.ReviewService.UpdateReview(r.Context(), sess, r.PathValue("id"), req.Rating, req.Comment, req.Photos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}

// HandleDelete handles DELETE /v1/reviews/{id}
//
//	@Summary		Delete Review
//	@Tags			Reviews
//	@Security		BearerAuth
//	@Param			id	path	string	true	"review id"
//	@Success		204
//	@Router			/v1/reviews/{id} [delete].
func (h *ReviewHandler) HandleDelete(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	if err := h.ReviewService.DeleteReview(r.Context(), sess, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRespond handles POST /v1/reviews/{id}/response
//
//	@Summary		Respond To Review
//	@Description	Business owner or admin. A review holds at most one live response.
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"review id"
//	@Param			request	body		directorysdk.ResponseRequest	true	"message"
//	@Success		201		{object}	directorysdk.Review
//	@Failure		409		{object}	httpx.ErrorBody	"already_exists"
//	@Router			/v1/reviews/{id}/response [post].
func (h *ReviewHandler) HandleRespond(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	var req directorysdk.ResponseRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	rv, err := h.ReviewService.RespondToReview(r.Context(), sess, r.PathValue("id"), req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rv)
}

// HandleUpdateResponse handles PATCH /v1/reviews/{id}/response
//
//	@Summary		Update Response
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"review id"
//	@Param			request	body		directorysdk.ResponseRequest	true	"message"
//	@Success		200		{object}	directorysdk.Review
//	@Failure		404		{object}	httpx.ErrorBody	"not_found"
//	@Router			/v1/reviews/{id}/response [patch].
func (h *ReviewHandler) HandleUpdateResponse(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	var req directorysdk.ResponseRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	rv, err := h.ReviewService.UpdateResponse(r.Context(), sess, r.PathValue("id"), req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}

// HandleDeleteResponse handles DELETE /v1/reviews/{id}/response
//
//	@Summary		Delete Response
//	@Description	Tombstones the response; its message becomes "[deleted]".
//	@Tags			Reviews
//	@Security		BearerAuth
//	@Param			id	path	string	true	"review id"
//	@Success		204
//	@Router			/v1/reviews/{id}/response [delete].
func (h *ReviewHandler) HandleDeleteResponse(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	if err := h.ReviewService.DeleteResponse(r.Context(), sess, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
