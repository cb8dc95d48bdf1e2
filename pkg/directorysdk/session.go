package directorysdk

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Session is a signed-in client. It carries the bearer token issued at
// sign-in and is safe for concurrent use.
type Session struct {
	client *Client

	mu        sync.RWMutex
	token     string
	sessionID string
	expiresAt time.Time
	user      User
}

func newSession(client *Client, resp SessionResponse) *Session {
	return &Session{
		client:    client,
		token:     resp.Token,
		sessionID: resp.SessionID,
		expiresAt: time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		user:      resp.User,
	}
}

// NewSessionFromToken wraps an already issued token.
func (c *Client) NewSessionFromToken(token string) *Session {
	return &Session{client: c, token: token}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// User returns the account as of sign-in or the last Me call.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.expiresAt.IsZero() && time.Now().After(s.expiresAt)
}

func (s *Session) do(ctx context.Context, method, path string, in, out any, expectedStatus int) error {
	return s.client.doJSON(ctx, method, path, s.Token(), in, out, expectedStatus)
}

// ============================================================================
// Account
// ============================================================================

// SignOut revokes the session server side. The Session is unusable after.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.do(ctx, http.MethodPost, "/v1/auth/signout", nil, nil, http.StatusNoContent); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

func (s *Session) Me(ctx context.Context) (*User, error) {
	var out User
	if err := s.do(ctx, http.MethodGet, "/v1/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = out
	s.mu.Unlock()
	return &out, nil
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	req := ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	return s.do(ctx, http.MethodPost, "/v1/me/password", req, nil, http.StatusNoContent)
}

func (s *Session) GetProfile(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := s.do(ctx, http.MethodGet, "/v1/me/profile", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile merges partial into the stored profile. A nil value
// removes its key.
func (s *Session) UpdateProfile(ctx context.Context, partial map[string]any) (map[string]any, error) {
	out := map[string]any{}
	if err := s.do(ctx, http.MethodPatch, "/v1/me/profile", partial, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) MyBusinesses(ctx context.Context) ([]Business, error) {
	var out []Business
	if err := s.do(ctx, http.MethodGet, "/v1/me/businesses", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) MyReviews(ctx context.Context) ([]Review, error) {
	var out []Review
	if err := s.do(ctx, http.MethodGet, "/v1/me/reviews", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================================
// Businesses
// ============================================================================

func (s *Session) CreateBusiness(ctx context.Context, req BusinessRequest) (*Business, error) {
	var out Business
	if err := s.do(ctx, http.MethodPost, "/v1/businesses", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateBusiness(ctx context.Context, id string, req BusinessRequest) (*Business, error) {
	var out Business
	if err := s.do(ctx, http.MethodPatch, "/v1/businesses/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteBusiness(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/v1/businesses/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// VerifyBusiness marks a listing verified. Admin only.
func (s *Session) VerifyBusiness(ctx context.Context, id string) (*Business, error) {
	var out Business
	path := "/v1/businesses/" + url.PathEscape(id) + "/verify"
	if err := s.do(ctx, http.MethodPost, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Reviews
// ============================================================================

func (s *Session) AddReview(ctx context.Context, businessID string, req ReviewRequest) (*Review, error) {
	var out Review
	path := "/v1/businesses/" + url.PathEscape(businessID) + "/reviews"
	if err := s.do(ctx, http.MethodPost, path, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateReview(ctx context.Context, id string, req ReviewRequest) (*Review, error) {
	var out Review
	if err := s.do(ctx, http.MethodPatch, "/v1/reviews/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteReview(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/v1/reviews/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (s *Session) RespondToReview(ctx context.Context, reviewID, message string) (*Review, error) {
	var out Review
	path := "/v1/reviews/" + url.PathEscape(reviewID) + "/response"
	if err := s.do(ctx, http.MethodPost, path, ResponseRequest{Message: message}, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateResponse(ctx context.Context, reviewID, message string) (*Review, error) {
	var out Review
	path := "/v1/reviews/" + url.PathEscape(reviewID) + "/response"
	if err := s.do(ctx, http.MethodPatch, path, ResponseRequest{Message: message}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteResponse(ctx context.Context, reviewID string) error {
	path := "/v1/reviews/" + url.PathEscape(reviewID) + "/response"
	return s.do(ctx, http.MethodDelete, path, nil, nil, http.StatusNoContent)
}

// ============================================================================
// Photos
// ============================================================================

// UploadPhoto stores an image and returns its reference. An empty
// contentType lets the server sniff it.
func (s *Session) UploadPhoto(ctx context.Context, contentType string, r io.Reader) (*PhotoResponse, error) {
	headers := map[string]string{}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	resp, err := s.client.doRequest(ctx, http.MethodPost, "/v1/photos", s.Token(), r, headers)
	if err != nil {
		return nil, err
	}

	var out PhotoResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Admin
// ============================================================================

func (s *Session) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.do(ctx, http.MethodGet, "/v1/admin/users", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) UpdateUser(ctx context.Context, id string, req UserUpdateRequest) (*User, error) {
	var out User
	if err := s.do(ctx, http.MethodPatch, "/v1/admin/users/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteUser(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/v1/admin/users/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// ============================================================================
// Debug
// ============================================================================

func (s *Session) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	var out SystemInfo
	if err := s.do(ctx, http.MethodGet, "/v1/debug/system", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	var out DatabaseStats
	if err := s.do(ctx, http.MethodGet, "/v1/debug/stats", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ExecuteQuery(ctx context.Context, query string) (*QueryResult, error) {
	var out QueryResult
	if err := s.do(ctx, http.MethodPost, "/v1/debug/query", QueryRequest{Query: query}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) RunPerformanceTest(ctx context.Context) (*PerformanceResult, error) {
	var out PerformanceResult
	if err := s.do(ctx, http.MethodPost, "/v1/debug/perf", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logs returns buffered log entries, newest first.
func (s *Session) Logs(ctx context.Context, q LogQuery) ([]LogEntry, error) {
	v := url.Values{}
	if q.Level != "" {
		v.Set("level", q.Level)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	path := "/v1/debug/logs"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var out []LogEntry
	if err := s.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) ClearLogs(ctx context.Context) error {
	return s.do(ctx, http.MethodDelete, "/v1/debug/logs", nil, nil, http.StatusNoContent)
}

func (s *Session) Export(ctx context.Context) (*Export, error) {
	var out Export
	if err := s.do(ctx, http.MethodGet, "/v1/debug/export", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ImportSampleData(ctx context.Context) (*ImportResult, error) {
	var out ImportResult
	if err := s.do(ctx, http.MethodPost, "/v1/debug/import", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

