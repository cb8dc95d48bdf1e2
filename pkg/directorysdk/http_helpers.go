package directorysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an HTTP request. A non-empty token is sent as a bearer
// credential.
func (c *Client) doRequest(
	ctx context.Context,
	method, path, token string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// doJSON encodes in (when non-nil) as the request body and decodes the
// response into out when it carries expectedStatus.
func (c *Client) doJSON(
	ctx context.Context,
	method, path, token string,
	in, out any,
	expectedStatus int,
) error {
	var body io.Reader
	var headers map[string]string
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
		headers = map[string]string{"Content-Type": "application/json"}
	}

	resp, err := c.doRequest(ctx, method, path, token, body, headers)
	if err != nil {
		return err
	}
	if expectedStatus == http.StatusNoContent {
		return checkStatusNoContent(resp)
	}
	return decodeJSON(resp, out, expectedStatus)
}

// decodeJSON decodes a JSON response into target, or returns an *APIError
// when the status is not the expected one.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		if err := parseErrorResponse(resp, bodyBytes); err != nil {
			return err
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if target == nil {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkStatusNoContent returns a typed error if the response status is not
// 204 No Content.
func checkStatusNoContent(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		if err := parseErrorResponse(resp, bodyBytes); err != nil {
			return err
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
