// Package tracker mirrors posts as link records in a remote link-tracking
// service, suppressing duplicates with an existence-check-then-create flow.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-call timeout for existence checks and bulk
// creates.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client talks to the remote link-tracking API.
type Client struct {
	httpClient HTTPClient
	host       string
	apiKey     string
	timeout    time.Duration
}

// NewClient creates an API client for the given host and key.
func NewClient(host, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		host:       strings.TrimRight(host, "/"),
		apiKey:     apiKey,
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	// A zero or negative timeout would expire every request immediately,
	// so treat it as "use the default".
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	return c
}

// Link is the payload shape for one remote link record.
type Link struct {
	URL         string   `json:"url"`
	Title       string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Visibility  string   `json:"visibility"`
	Lists       []int    `json:"lists,omitempty"`
}

type searchResponse struct {
	Links []Link `json:"response"`
}

// LinkExists queries the remote service for an exact URL match.
func (c *Client) LinkExists(ctx context.Context, linkURL string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/v1/links?searchQueryString=%s", c.host, url.QueryEscape(linkURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create search request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("link search returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read search response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, fmt.Errorf("failed to parse search response: %w", err)
	}

	for _, l := range parsed.Links {
		if l.URL == linkURL {
			return true, nil
		}
	}
	return false, nil
}

// CreateLinks submits all links in one bulk call. The endpoint behaves
// all-or-nothing: any non-2xx response means no link can be credited as
// created.
func (c *Client) CreateLinks(ctx context.Context, links []Link) error {
	if len(links) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(map[string][]Link{"links": links})
	if err != nil {
		return fmt.Errorf("failed to marshal links: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/links/bulk", c.host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create bulk request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("bulk create returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-ID", uuid.NewString())
}
