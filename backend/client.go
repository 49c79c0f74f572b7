// Package backend is the HTTP client for the remote authentication API.
// Every outbound call the front door makes lives here: email lookups, link
// and token validation, login, handoff-token minting, and the downstream
// health check.
//
// Call sites outside this package never see transport detail. Read-only
// checks degrade to their least-trusting result (INVALID, false, nil) and
// only log; the login and encrypt operations return an error so the
// orchestrator can surface the backend's own message.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emontalvo610/sso-oauth/cache"
)

// Config holds configuration for the backend client.
type Config struct {
	// BaseURL of the authentication API, e.g. "https://api.example.com".
	BaseURL string
	// Timeout bounds every call. A timed-out call is indistinguishable
	// from a rejected one to callers.
	Timeout time.Duration
	// SecretCache memoizes validated email secrets. Required.
	SecretCache cache.SecretCache
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the authentication API.
type Client struct {
	baseURL string
	http    *http.Client
	secrets cache.SecretCache

	now func() time.Time
}

// NewClient creates a new backend API client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		secrets: cfg.SecretCache,
		now:     time.Now,
	}
}

// get issues a GET with the configured deadline and optional headers.
func (c *Client) get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// postJSON issues a POST with a JSON body and optional headers.
func (c *Client) postJSON(ctx context.Context, url string, body any, headers map[string]string) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
