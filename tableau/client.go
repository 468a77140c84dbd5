// Package tableau is a thin client for the Tableau REST and Metadata APIs,
// authenticated with Connected App session tokens. Every call performs a
// single request with no caching and no retries; each process invocation is
// expected to sign in fresh.
package tableau

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/dataops-tools/tableau-fetch/internal/config"
)

const authHeader = "X-Tableau-Auth"

// Credentials is the session issued by a successful sign-in. It is held in
// memory for the duration of one call chain and never persisted.
type Credentials struct {
	Token          string
	SiteID         string
	SiteContentURL string
	UserID         string
}

// Client talks to a single Tableau pod and site.
type Client struct {
	baseURL    string // scheme + pod host, no trailing slash
	apiVersion string
	site       string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the pod-derived base URL. Used to point the client at
// a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient builds a client from the loaded configuration. The HTTP timeout is
// always set explicitly; TLS verification stays on unless the configuration
// opted out, in which case the opt-out is logged.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	if cfg.InsecureSkipVerify {
		log.Warn().Str("pod", cfg.Pod).Msg("TLS certificate verification disabled")
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	c := &Client{
		baseURL:    "https://" + cfg.Pod,
		apiVersion: cfg.APIVersion,
		site:       cfg.Site,
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// restURL builds a versioned REST API URL, e.g. /api/3.22/auth/signin.
func (c *Client) restURL(path string) string {
	return fmt.Sprintf("%s/api/%s/%s", c.baseURL, c.apiVersion, path)
}

// postJSON sends payload as a JSON body and returns the response status and
// body. A nil error only means the HTTP exchange completed; status handling is
// the caller's job.
func (c *Client) postJSON(ctx context.Context, endpoint, sessionToken string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if sessionToken != "" {
		req.Header.Set(authHeader, sessionToken)
	}

	return c.do(req)
}

// getJSON issues a GET with the session token header and optional query
// parameters.
func (c *Client) getJSON(ctx context.Context, endpoint, sessionToken string, query url.Values) (int, []byte, error) {
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(authHeader, sessionToken)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Endpoint: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Endpoint: req.URL.String(), Err: err}
	}
	return resp.StatusCode, body, nil
}
