// Package backend is a typed client for the admin backend API. Every call goes through an
// authclient.Client, so tokens are attached and refreshed transparently.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/pr-admin-client/authclient"
)

type Client struct {
	http    *authclient.Client
	baseURL *url.URL
}

func New(baseURL string, client *authclient.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	return &Client{http: client, baseURL: u}, nil
}

// APIError is a non-2xx answer with the backend's error body decoded
type APIError struct {
	Method      string `json:"-"`
	Path        string `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`

	status *authclient.StatusError
	cause  error // What authclient returned; status or an error wrapping it
}

func (e *APIError) Error() string {
	if e.cause != nil && e.cause != error(e.status) {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.cause)
	}
	if e.Description == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.status.Status)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.status.Status, e.Description)
}

func (e *APIError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return e.status
}

func (e *APIError) StatusCode() int {
	return e.status.StatusCode
}

func (c *Client) endpoint(query url.Values, elem ...string) string {
	u := c.baseURL.JoinPath(elem...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) doJSON(ctx context.Context, method string, query url.Values, in, out any, elem ...string) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", method, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(query, elem...), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(ctx, req, out)
}

func (c *Client) send(ctx context.Context, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return decodeError(req, err)
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeError(req *http.Request, err error) error {
	var statusErr *authclient.StatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	apiErr := &APIError{Method: req.Method, Path: req.URL.Path, status: statusErr, cause: err}
	if json.Unmarshal(statusErr.Body, apiErr) != nil {
		apiErr.Description = string(statusErr.Body)
	}
	return apiErr
}
