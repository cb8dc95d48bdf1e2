package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/directory/internal/directory/debug"
	"github.com/aussiebroadwan/directory/internal/directory/media"
	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

// apiError maps an error from the service layer onto the wire error.
// Unrecognised errors become server_error.
func apiError(err error) *directorysdk.APIError {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return directorysdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrAccountSuspended):
		return directorysdk.ErrAccountSuspended
	case errors.Is(err, service.ErrAccountInactive):
		return directorysdk.ErrAccountInactive
	case errors.Is(err, service.ErrNoSession):
		return directorysdk.ErrNoSession
	case errors.Is(err, service.ErrPermissionDenied):
		return directorysdk.ErrPermissionDenied
	case errors.Is(err, service.ErrInvalidRating):
		return directorysdk.ErrInvalidRating
	case errors.Is(err, service.ErrInvalidInput):
		return directorysdk.ErrInvalidRequest.WithDescription(detail(err, service.ErrInvalidInput))
	case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, store.ErrAlreadyExists):
		return directorysdk.ErrAlreadyExists
	case errors.Is(err, service.ErrNotFound), errors.Is(err, store.ErrNotFound), errors.Is(err, media.ErrNotFound):
		return directorysdk.ErrNotFound
	case errors.Is(err, debug.ErrUnsupportedQuery):
		return directorysdk.ErrUnsupportedQuery.WithDescription(detail(err, debug.ErrUnsupportedQuery))
	case errors.Is(err, media.ErrUnsupportedType):
		return directorysdk.ErrUnsupportedMedia
	case errors.Is(err, media.ErrTooLarge):
		return directorysdk.ErrPayloadTooLarge
	case errors.Is(err, store.ErrNotInitialized):
		return directorysdk.ErrNotInitialized
	}
	return nil
}

// writeError writes the wire form of err. Unexpected errors are logged
// and reported as server_error without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if e := apiError(err); e != nil {
		e.WriteError(w)
		return
	}
	slogx.Category(r.Context(), "http").Error("request failed", slog.Any("error", err))
	directorysdk.ErrServerError.WriteError(w)
}

// detail strips the sentinel prefix from a wrapped error message.
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

func badRequest(w http.ResponseWriter, desc string) {
	directorysdk.ErrInvalidRequest.WithDescription(desc).WriteError(w)
}
