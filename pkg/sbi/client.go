package sbi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
)

const defaultClientTimeout = 5 * time.Second

// Client is a JSON client for calling a peer network function's SBI.
type Client struct {
	targetNF   string
	baseURL    string
	httpClient *http.Client
	token      string
	metrics    metrics.SBIMetrics
}

// NewClient creates a client for the peer at baseURL. targetNF labels the
// client metrics, for example "NRF". A zero timeout falls back to a short
// default so calls to a dead peer fail fast.
func NewClient(targetNF, baseURL string, timeout time.Duration, m metrics.SBIMetrics) *Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	return &Client{
		targetNF: targetNF,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: m,
	}
}

// WithToken returns a new client that sends the given bearer token.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		targetNF:   c.targetNF,
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		token:      token,
		metrics:    c.metrics,
	}
}

// SetToken sets the bearer token sent on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the peer base URL this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs an HTTP request and decodes the response.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordClientError(c.targetNF, method)
		}
		return fmt.Errorf("request to %s failed: %w", c.targetNF, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.metrics != nil {
		c.metrics.RecordClientRequest(c.targetNF, method, resp.StatusCode, time.Since(start))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}
