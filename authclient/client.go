// Package authclient sends requests to the admin backend with a bearer token from the current
// identity. When the backend answers 401 the client forces one token refresh, shared by every
// request failing at the same time, and re-issues each request once with the new token.
package authclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/pr-admin-client/identity"
	"github.com/jrsteele09/pr-admin-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxErrorBody = 64 << 10

type Client struct {
	provider   identity.Provider
	httpClient *http.Client
	header     string
	metrics    *Metrics
	logger     zerolog.Logger

	requestTimeout time.Duration
	refreshTimeout time.Duration
	refresher      *refresher
	unsubscribe    func()
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its Timeout is kept unless WithTimeout is
// also given.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout bounds each individual HTTP call
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.requestTimeout = d
	}
}

// WithRefreshTimeout bounds a forced refresh. Zero waits for the provider indefinitely.
func WithRefreshTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.refreshTimeout = d
	}
}

// WithHeaderName sets the header the token is sent in
func WithHeaderName(name string) Option {
	return func(client *Client) {
		client.header = name
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(client *Client) {
		client.metrics = m
	}
}

// New creates a client bound to provider. Close releases the session-ended subscription.
func New(provider identity.Provider, options ...Option) *Client {
	c := &Client{
		provider:       provider,
		httpClient:     &http.Client{},
		header:         config.DefaultTokenHeader,
		logger:         log.Logger,
		refreshTimeout: 15 * time.Second,
	}
	for _, opt := range options {
		opt(c)
	}
	timeout := c.requestTimeout
	if timeout == 0 && c.httpClient.Timeout == 0 {
		timeout = 30 * time.Second
	}
	if timeout > 0 {
		httpClient := *c.httpClient
		httpClient.Timeout = timeout
		c.httpClient = &httpClient
	}
	c.logger = c.logger.With().Str("component", "authclient").Logger()
	c.refresher = newRefresher(provider, c.refreshTimeout, c.metrics, c.logger)
	c.unsubscribe = provider.OnSessionEnded(func() {
		c.refresher.abort(ErrSessionEnded)
	})
	return c
}

// NewFromConfig applies the request and refresh timeouts and header name from cfg
func NewFromConfig(provider identity.Provider, cfg config.ClientConfig, options ...Option) *Client {
	base := []Option{
		WithTimeout(cfg.GetRequestTimeout()),
		WithRefreshTimeout(cfg.GetRefreshTimeout()),
		WithHeaderName(cfg.GetTokenHeader()),
	}
	return New(provider, append(base, options...)...)
}

func (c *Client) Close() {
	c.unsubscribe()
}

// HeaderName is the header the token is sent in
func (c *Client) HeaderName() string {
	return c.header
}

// Do sends req with a token attached. A 401 on the first attempt triggers a shared refresh
// and a single retry. Responses outside 2xx are returned as *StatusError.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := makeReplayable(req); err != nil {
		return nil, err
	}

	attempt := Attempt{}
	resp, err := c.send(ctx, req, attempt, "")
	if err == nil || !IsUnauthorized(err) {
		return resp, err
	}
	return c.retryUnauthorized(ctx, req, attempt.retry(), err)
}

func (c *Client) retryUnauthorized(ctx context.Context, req *http.Request, attempt Attempt, cause error) (*http.Response, error) {
	id := c.provider.CurrentIdentity()
	if id == nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, cause)
	}

	settled := make(chan refreshResult, 1)
	c.refresher.refresh(ctx, id, func(result refreshResult) {
		settled <- result
	})

	var result refreshResult
	select {
	case result = <-settled:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if result.err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", result.err)
	}

	c.metrics.retried()
	c.logger.Debug().Str("method", req.Method).Str("url", req.URL.Redacted()).Msg("Retrying with refreshed token")
	return c.send(ctx, req, attempt, result.token)
}

// send issues one attempt of req. A non-empty token is used as is; otherwise one is minted.
func (c *Client) send(ctx context.Context, req *http.Request, attempt Attempt, token string) (*http.Response, error) {
	out, err := cloneRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if token != "" {
		c.setToken(out, token)
	}
	c.attachToken(ctx, out, attempt)

	resp, err := c.httpClient.Do(out)
	if err != nil {
		return nil, err
	}
	c.metrics.response(resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       bytes.TrimSpace(body),
	}
}

// attachToken sets the bearer header from the current identity. Without an identity, or when
// minting fails, the request goes out unauthenticated and the backend decides.
func (c *Client) attachToken(ctx context.Context, req *http.Request, attempt Attempt) {
	if attempt.Retried && req.Header.Get(c.header) != "" {
		return
	}

	id := c.provider.CurrentIdentity()
	if id == nil {
		return
	}

	token, err := c.provider.MintToken(ctx, id, false)
	if err != nil {
		c.logger.Warn().Err(err).Str("subject", id.Subject()).Msg("Failed to get token, sending request without one")
		return
	}
	c.setToken(req, token)
}

func (c *Client) setToken(req *http.Request, token string) {
	req.Header.Set(c.header, "Bearer "+token)
}

// makeReplayable buffers a body that cannot be re-read so the retry can send it again
func makeReplayable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to buffer request body: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	req.Body, _ = req.GetBody()
	return nil
}

func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	out := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to replay request body: %w", err)
		}
		out.Body = body
	}
	return out, nil
}
