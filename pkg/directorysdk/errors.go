package directorysdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/directory/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeAccountSuspended   = "account_suspended"
	ErrorCodeAccountInactive    = "account_inactive"
	ErrorCodeNoSession          = "no_session"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodePermissionDenied   = "permission_denied"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeAlreadyExists      = "already_exists"
	ErrorCodeInvalidRating      = "invalid_rating"
	ErrorCodeUnsupportedQuery   = "unsupported_query"
	ErrorCodeUnsupportedMedia   = "unsupported_media_type"
	ErrorCodePayloadTooLarge    = "payload_too_large"
	ErrorCodeRateLimitExceeded  = "rate_limit_exceeded"
	ErrorCodeNotInitialized     = "not_initialized"
	ErrorCodeServerError        = "server_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body every endpoint returns. Handlers write it with
// WriteError; the client decodes failed responses into it.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e as the JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, httpx.ErrorBody{
		Error:            e.Code,
		ErrorDescription: e.Description,
	})
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	cp := *e
	cp.Description = desc
	return &cp
}

func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

// IsKind reports whether err is an *APIError with the given code.
func IsKind(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidRequest     = NewAPIError(http.StatusBadRequest, ErrorCodeInvalidRequest, "the request is malformed or missing required fields")
	ErrInvalidCredentials = NewAPIError(http.StatusUnauthorized, ErrorCodeInvalidCredentials, "invalid email or password")
	ErrAccountSuspended   = NewAPIError(http.StatusForbidden, ErrorCodeAccountSuspended, "this account is suspended")
	ErrAccountInactive    = NewAPIError(http.StatusForbidden, ErrorCodeAccountInactive, "this account is inactive")
	ErrNoSession          = NewAPIError(http.StatusUnauthorized, ErrorCodeNoSession, "sign in to continue")
	ErrInvalidToken       = NewAPIError(http.StatusUnauthorized, ErrorCodeInvalidToken, "the session token is invalid, expired or revoked")
	ErrPermissionDenied   = NewAPIError(http.StatusForbidden, ErrorCodePermissionDenied, "you are not allowed to do that")
	ErrNotFound           = NewAPIError(http.StatusNotFound, ErrorCodeNotFound, "not found")
	ErrAlreadyExists      = NewAPIError(http.StatusConflict, ErrorCodeAlreadyExists, "already exists")
	ErrInvalidRating      = NewAPIError(http.StatusBadRequest, ErrorCodeInvalidRating, "rating must be between 1 and 5")
	ErrUnsupportedQuery   = NewAPIError(http.StatusBadRequest, ErrorCodeUnsupportedQuery, "unsupported query")
	ErrUnsupportedMedia   = NewAPIError(http.StatusUnsupportedMediaType, ErrorCodeUnsupportedMedia, "photos must be jpeg, png, webp or gif")
	ErrPayloadTooLarge    = NewAPIError(http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "upload is too large")
	ErrNotInitialized     = NewAPIError(http.StatusServiceUnavailable, ErrorCodeNotInitialized, "the store is not initialized")
	ErrServerError        = NewAPIError(http.StatusInternalServerError, ErrorCodeServerError, "internal server error")
	ErrMethodNotAllowed   = NewAPIError(http.StatusMethodNotAllowed, ErrorCodeInvalidRequest, "method not allowed")
)

// parseErrorResponse turns a failed response into an *APIError. Bodies that
// are not error JSON fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var eb httpx.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        eb.Error,
			Description: eb.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
