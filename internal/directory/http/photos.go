package http

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/directory/internal/directory/media"
	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/aussiebroadwan/directory/pkg/httpx"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

// PhotoHandler stores and serves the images referenced by businesses and
// reviews.
type PhotoHandler struct {
	Photos   media.Store
	MaxBytes int64
}

// HandleUpload handles POST /v1/photos
//
//	@Summary		Upload Photo
//	@Description	Raw image body (jpeg, png, webp or gif). Returns a reference to put in a business or review.
//	@Tags			Photos
//	@Accept			image/jpeg,image/png,image/webp,image/gif
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	directorysdk.PhotoResponse
//	@Failure		413	{object}	httpx.ErrorBody	"payload_too_large"
//	@Failure		415	{object}	httpx.ErrorBody	"unsupported_media_type"
//	@Router			/v1/photos [post].
func (h *PhotoHandler) HandleUpload(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	u, err := sess.Require()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.Photos == nil {
		directorysdk.ErrNotFound.WithDescription("photo storage is not configured").WriteError(w)
		return
	}
	if r.ContentLength > h.MaxBytes {
		directorysdk.ErrPayloadTooLarge.WriteError(w)
		return
	}

	ref, err := h.Photos.Put(r.Context(), r.Header.Get("Content-Type"), r.Body, r.ContentLength)
	if err != nil {
		writeError(w, r, err)
		return
	}
	info, err := h.Photos.Stat(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slogx.Category(r.Context(), "media").Info("photo uploaded",
		slog.String("ref", ref),
		slog.String("user_id", u.ID),
		slog.Int64("size", info.Size),
	)
	httpx.WriteJSON(w, http.StatusCreated, directorysdk.PhotoResponse{
		Ref:         ref,
		URL:         "/v1/photos/" + ref,
		ContentType: info.ContentType,
		Size:        info.Size,
	})
}

// HandleGet handles GET /v1/photos/{ref}
//
//	@Summary		Get Photo
//	@Tags			Photos
//	@Produce		image/jpeg,image/png,image/webp,image/gif
//	@Param			ref	path	string	true	"photo reference"
//	@Success		200
//	@Failure		404	{object}	httpx.ErrorBody	"not_found"
//	@Router			/v1/photos/{ref} [get].
func (h *PhotoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	if h.Photos == nil || !media.ValidRef(ref) {
		directorysdk.ErrNotFound.WriteError(w)
		return
	}

	rc, info, err := h.Photos.Get(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
