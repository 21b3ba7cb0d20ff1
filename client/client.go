// Package client is the typed HTTP client of the finance REST backend used by
// the dashboard and the command line tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"economic/logging"

	"github.com/sirupsen/logrus"
)

// TokenSource yields the bearer token for a request, or "" when signed out.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client performs single-attempt JSON requests against the backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for baseURL. tokens may be nil for anonymous use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		log:     logging.Component("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of c that reads tokens from ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// BaseURL is the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends body as JSON to endpoint and decodes the answer into out.
//
// Non-2xx answers return *APIError. On success a JSON answer is decoded into
// out; any other answer is stored as text when out is *string. A *[]byte out
// receives the raw body whatever its type. There is no retry and no timeout
// beyond ctx.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"method": method, "endpoint": endpoint}).WithError(err).Debug("request failed")
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"method":     method,
		"endpoint":   endpoint,
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	return decode(resp.Header.Get("Content-Type"), raw, out)
}

func decode(contentType string, raw []byte, out interface{}) error {
	if out == nil {
		return nil
	}
	if b, ok := out.(*[]byte); ok {
		*b = raw
		return nil
	}
	if strings.Contains(contentType, "application/json") {
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = string(raw)
		return nil
	}
	return fmt.Errorf("decode response: unexpected content type %q", contentType)
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) patch(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPatch, endpoint, body, out)
}

func (c *Client) delete(ctx context.Context, endpoint string) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, nil)
}
