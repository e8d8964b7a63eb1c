// Package cliclient provides a lightweight HTTP client for the registrar services.
package cliclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nebari-dev/registrar/internal/models"
)

// Client talks to the service of a single resource kind.
type Client struct {
	baseURL    string
	kind       models.Kind
	httpClient *http.Client
}

// New creates a new API client for the kind served at baseURL.
func New(baseURL string, kind models.Kind) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		kind:    kind,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Kind returns the resource kind this client targets.
func (c *Client) Kind() models.Kind { return c.kind }

// request performs an HTTP request and decodes the JSON response.
func (c *Client) request(ctx context.Context, method, path string, body, result interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		var msg MessageResponse
		if json.Unmarshal(respBody, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return resp, apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return resp, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp, nil
}

// APIError represents an API error response.
type APIError struct {
	StatusCode int
	Message    string // "message" field of the JSON body, when present
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

func statusIs(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// IsNotFound returns true if the error is a 404 Not Found error.
func IsNotFound(err error) bool { return statusIs(err, http.StatusNotFound) }

// IsBadRequest returns true if the error is a 400 Bad Request error.
func IsBadRequest(err error) bool { return statusIs(err, http.StatusBadRequest) }
