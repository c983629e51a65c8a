package appwrite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config identifies the hosted backend project this client talks to.
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	ProjectID  string `yaml:"project_id"`
	APIKey     string `yaml:"api_key"`
	DatabaseID string `yaml:"database_id"`
}

// Client is a minimal REST client for the hosted backend. Databases and
// Storage hang off it as sub-clients.
type Client struct {
	cfg     Config
	client  *http.Client
	headers map[string]string
}

// NewClient creates a backend client with default timeout and auth headers.
func NewClient(cfg Config) *Client {
	c := &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: map[string]string{
			"X-Appwrite-Project": cfg.ProjectID,
			"Content-Type":       "application/json",
		},
	}
	if cfg.APIKey != "" {
		c.headers["X-Appwrite-Key"] = cfg.APIKey
	}
	return c
}

// SetTimeout overrides the default request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// SetHeader sets an extra header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(responseBody)}
	}

	return responseBody, nil
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status code: %d, response: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 API error.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}
