// Package client is the HTTP side of the client toolkit: a thin JSON
// client over the REST API that attaches bearer tokens and normalizes
// error responses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient issues authenticated JSON requests against the API base URL.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient builds a client for baseURL (no trailing slash required).
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Request performs one round-trip. A non-nil body is marshaled as JSON
// with a Content-Type header; a non-empty token becomes a bearer header.
// On non-2xx statuses the server's "error" message is surfaced when
// decodable, otherwise a generic failure with the status text. A 2xx
// response with an empty body leaves out untouched.
func (c *APIClient) Request(ctx context.Context, method, endpoint string, body interface{}, token string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.normalizeError(resp, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *APIClient) normalizeError(resp *http.Response, raw []byte) error {
	var apiErr struct {
		Error  string `json:"error"`
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(raw, &apiErr) == nil {
		if apiErr.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
		}
		if len(apiErr.Errors) > 0 {
			msgs := make([]string, 0, len(apiErr.Errors))
			for _, fe := range apiErr.Errors {
				msgs = append(msgs, fe.Message)
			}
			return &APIError{Status: resp.StatusCode, Message: msgs[0], FieldMessages: msgs}
		}
	}
	return &APIError{Status: resp.StatusCode, Message: "request failed: " + resp.Status}
}

// APIError is a normalized non-2xx response.
type APIError struct {
	Status int
	// Message is the server-supplied error, or a generic failure line.
	Message string
	// FieldMessages holds every validation message on a 400.
	FieldMessages []string
}

func (e *APIError) Error() string {
	return e.Message
}

// Get issues an authenticated GET.
func (c *APIClient) Get(ctx context.Context, endpoint, token string, out interface{}) error {
	return c.Request(ctx, http.MethodGet, endpoint, nil, token, out)
}

// Post issues an authenticated POST with a JSON body.
func (c *APIClient) Post(ctx context.Context, endpoint string, body interface{}, token string, out interface{}) error {
	return c.Request(ctx, http.MethodPost, endpoint, body, token, out)
}

// Patch issues an authenticated PATCH with a JSON body.
func (c *APIClient) Patch(ctx context.Context, endpoint string, body interface{}, token string, out interface{}) error {
	return c.Request(ctx, http.MethodPatch, endpoint, body, token, out)
}

// Delete issues an authenticated DELETE.
func (c *APIClient) Delete(ctx context.Context, endpoint, token string) error {
	return c.Request(ctx, http.MethodDelete, endpoint, nil, token, nil)
}
