package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/aussiebroadwan/directory/pkg/httpx"
)

type BusinessHandler struct {
	BusinessService *service.BusinessService
}

// HandleList handles GET /v1/businesses
//
//	@Summary		List Businesses
//	@Description	Public listing, newest first.
//	@Tags			Businesses
//	@Produce		json
//	@Param			category		query	string	false	"category (case-insensitive)"
//	@Param			lgbtqFriendly	query	bool	false	"only LGBTQ+-friendly listings"
//	@Param			verified		query	bool	false	"only verified listings"
//	@Success		200				{array}	directorysdk.Business
//	@Failure		400				{object}	httpx.ErrorBody	"invalid_request"
//	@Router			/v1/businesses [get].
func (h *BusinessHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.BusinessFilter{Category: q.Get("category")}

	var err error
	if f.LGBTQFriendly, err = boolParam(q.Get("lgbtqFriendly")); err != nil {
		badRequest(w, "lgbtqFriendly must be a boolean")
		return
	}
	if f.VerifiedOnly, err = boolParam(q.Get("verified")); err != nil {
		badRequest(w, "verified must be a boolean")
		return
	}

	out, err := h.BusinessService.GetAllBusinesses(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list(out))
}

// HandleGet handles GET /v1/businesses/{id}
//
//	@Summary		Get Business
//	@Tags			Businesses
//	@Produce		json
//	@Param			id	path		string	true	"business id"
//	@Success		200	{object}	directorysdk.Business
//	@Failure		404	{object}	httpx.ErrorBody	"not_found"
//	@Router			/v1/businesses/{id} [get].
func (h *BusinessHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	b, err := h.BusinessService.GetBusinessByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

// HandleCreate handles POST /v1/businesses
//
//	@Summary		Create Business
//	@Description	Creates an unverified listing owned by the caller, who must hold the business or admin role.
//	@Tags			Businesses
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		directorysdk.BusinessRequest	true	"listing fields"
//	@Success		201		{object}	directorysdk.Business
//	@Failure		400		{object}	httpx.ErrorBody	"invalid_request"
//	@Failure		403		{object}	httpx.ErrorBody	"permission_denied"
//	@Router			/v1/businesses [post].
func (h *BusinessHandler) HandleCreate(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	var req directorysdk.BusinessRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	b, err := h.BusinessService.CreateBusiness(r.Context(), sess, businessInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

// HandleUpdate handles PATCH /v1/businesses/{id}
//
//	@Summary		Update Business
//	@Description	Owner or admin. Omitted fields are left unchanged.
//	@Tags			Businesses
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"business id"
//	@Param			request	body		directorysdk.BusinessRequest	true	"fields to change"
//	@Success		200		{object}	directorysdk.Business
//	@Failure		403		{object}	httpx.ErrorBody	"permission_denied"
//	@Failure		404		{object}	httpx.ErrorBody	"not_found"
//	@Router			/v1/businesses/{id} [patch].
func (h *BusinessHandler) HandleUpdate(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	var req directorysdk.BusinessRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	b, err := h.BusinessService.UpdateBusiness(r.Context(), sess, r.PathValue("id"), businessInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

// HandleDelete handles DELETE /v1/businesses/{id}
//
//	@Summary		Delete Business
//	@Description	Owner or admin. The listing's reviews are removed with it.
//	@Tags			Businesses
//	@Security		BearerAuth
//	@Param			id	path	string	true	"business id"
//	@Success		204
//	@Failure		403	{object}	httpx.ErrorBody	"permission_denied"
//	@Failure		404	{object}	httpx.ErrorBody	"not_found"
//	@Router			/v1/businesses/{id} [delete].
func (h *BusinessHandler) HandleDelete(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	if err := h.BusinessService.DeleteBusiness(r.Context(), sess, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerify handles POST /v1/businesses/{id}/verify
//
//	@Summary		Verify Business
//	@Tags			Businesses
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"business id"
//	@Success		200	{object}	directorysdk.Business
//	@Failure		403	{object}	httpx.ErrorBody	"permission_denied"
//	@Router			/v1/businesses/{id}/verify [post].
func (h *BusinessHandler) HandleVerify(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	b, err := h.BusinessService.VerifyBusiness(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func businessInput(req directorysdk.BusinessRequest) service.BusinessInput {
	in := service.BusinessInput{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Address:       req.Address,
		Phone:         req.Phone,
		Website:       req.Website,
		Hours:         domain.Document(req.Hours),
		Amenities:     req.Amenities,
		Photos:        req.Photos,
		LGBTQFriendly: req.LGBTQFriendly,
		Accessibility: domain.Document(req.Accessibility),
	}
	if req.Location != nil {
		in.Location = &domain.Location{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude}
	}
	return in
}

func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
