package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no backend base URL is set
var ErrNotConfigured = errors.New("rigbot backend URL not configured")

// APIError is a non-2xx answer from the backend. Message is the server text,
// shown to the user verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend API error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to the RigBot chatbot backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client. An empty baseURL yields a client whose
// operations return ErrNotConfigured.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Configured reports whether a base URL is set
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// BaseURL returns the configured base URL without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// InitiateURL is the browser redirect target that starts the calendar OAuth
// handshake for userID
func (c *Client) InitiateURL(userID string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	q := url.Values{}
	q.Set("userId", userID)
	return c.baseURL + "/api/auth/google/initiate?" + q.Encode(), nil
}

// DisconnectCalendar revokes the calendar connection of the bearer's user
func (c *Client) DisconnectCalendar(ctx context.Context, bearer string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/google/disconnect", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}
	return nil
}

// errorMessage extracts {"error": ...} or {"message": ...}, else the raw body
func errorMessage(body []byte, status string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}
