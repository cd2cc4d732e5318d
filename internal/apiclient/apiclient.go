// Package apiclient is the HTTP core shared by the upstream API
// clients: bearer auth through an injected token provider, request
// throttling, and bounded retry with exponential backoff.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TokenProvider supplies bearer tokens for one upstream API.
// Implementations own credential storage and refresh; nothing else in
// the system touches credentials.
type TokenProvider interface {
	// Token returns a currently valid access token.
	Token(ctx context.Context) (string, error)
	// Invalidate discards any cached token so the next Token call
	// fetches a fresh one. Called after an unexpected 401.
	Invalidate()
}

// StatusError is a non-2xx response from the upstream API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Body)
}

// Client issues authenticated JSON requests against one API base URL.
type Client struct {
	base    string
	http    *http.Client
	tokens  TokenProvider
	headers map[string]string
	log     *zap.Logger

	interval time.Duration
	retries  int
	backoff  time.Duration

	mu   sync.Mutex
	last time.Time
}

// Option adjusts a Client.
type Option func(*Client)

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithHTTPClient replaces the underlying HTTP client (used for mTLS and
// for tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client. minInterval spaces consecutive requests; retries
// and backoff bound the retry loop on 429/5xx and transport errors.
func New(baseURL string, tokens TokenProvider, minInterval time.Duration, retries int, backoff time.Duration, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		base:     baseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		tokens:   tokens,
		headers:  make(map[string]string),
		log:      log,
		interval: minInterval,
		retries:  retries,
		backoff:  backoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON issues a GET and decodes the response body into out. A nil out
// discards the body. On 401 the token is invalidated and the request
// retried once with a fresh token; 429 and 5xx responses retry with
// exponential backoff.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	var lastErr error
	refreshed := false

	for attempt := 0; attempt < c.retries; attempt++ {
		if err := c.throttle(ctx); err != nil {
			return err
		}

		body, status, err := c.do(ctx, path, query)
		switch {
		case err != nil:
			lastErr = err
		case status == http.StatusUnauthorized && !refreshed:
			c.tokens.Invalidate()
			refreshed = true
			continue
		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = &StatusError{Code: status, Body: string(body)}
		case status >= 400:
			return &StatusError{Code: status, Body: string(body)}
		default:
			if out == nil || status == http.StatusNoContent || len(body) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decoding %s response: %w", path, err)
			}
			return nil
		}

		c.log.Warn("request failed, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff * (1 << attempt)):
		}
	}

	return fmt.Errorf("%s: retries exhausted: %w", path, lastErr)
}

func (c *Client) do(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquiring token: %w", err)
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s response: %w", path, err)
	}
	return body, resp.StatusCode, nil
}

// throttle enforces the minimum spacing between requests.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	wait := c.interval - time.Since(c.last)
	c.last = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
