package directorysdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the directory API. It covers the public endpoints and
// mints Sessions for everything else.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ============================================================================
// Health
// ============================================================================

func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness returns the readiness report. A degraded service answers
// 503, which is returned as an *APIError.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Auth
// ============================================================================

// SignUp registers an account and returns a Session signed in as it.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	var out SessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/signup", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return newSession(c, out), nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	req := SignInRequest{Email: email, Password: password}

	var out SessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/signin", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, out), nil
}

// ============================================================================
// Public reads
// ============================================================================

func (c *Client) ListBusinesses(ctx context.Context, q BusinessQuery) ([]Business, error) {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.LGBTQFriendly {
		v.Set("lgbtqFriendly", "true")
	}
	if q.VerifiedOnly {
		v.Set("verified", "true")
	}
	path := "/v1/businesses"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var out []Business
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBusiness(ctx context.Context, id string) (*Business, error) {
	var out Business
	if err := c.doJSON(ctx, http.MethodGet, "/v1/businesses/"+url.PathEscape(id), "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBusinessReviews(ctx context.Context, businessID string) ([]Review, error) {
	var out []Review
	path := "/v1/businesses/" + url.PathEscape(businessID) + "/reviews"
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPhoto streams a stored photo. The caller closes the reader.
func (c *Client) GetPhoto(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/photos/"+url.PathEscape(ref), "", nil, nil)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if err := parseErrorResponse(resp, body); err != nil {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
