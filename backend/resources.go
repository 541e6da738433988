package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/pr-admin-client/report"
	"github.com/jrsteele09/pr-admin-client/sites"
	"github.com/jrsteele09/pr-admin-client/token"
	"github.com/jrsteele09/pr-admin-client/users"
)

const (
	pathAPI         = "api"
	pathUsers       = "users"
	pathWebsites    = "websites"
	pathBlockedURLs = "blocked-urls"
	pathReports     = "reports"
)

// Me returns the claims the backend sees in the current token
func (c *Client) Me(ctx context.Context) (*token.Claims, error) {
	var claims token.Claims
	if err := c.doJSON(ctx, http.MethodGet, nil, nil, &claims, pathAPI, "me"); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (c *Client) ListUsers(ctx context.Context, offset, limit int) ([]*users.User, error) {
	query := url.Values{}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var list []*users.User
	if err := c.doJSON(ctx, http.MethodGet, query, nil, &list, pathAPI, pathUsers); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateUser(ctx context.Context, req users.CreateRequest) (*users.User, error) {
	var created users.User
	if err := c.doJSON(ctx, http.MethodPost, nil, req, &created, pathAPI, pathUsers); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, nil, nil, nil, pathAPI, pathUsers, id)
}

func (c *Client) ListWebsites(ctx context.Context) ([]*sites.Website, error) {
	var list []*sites.Website
	if err := c.doJSON(ctx, http.MethodGet, nil, nil, &list, pathAPI, pathWebsites); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateWebsite(ctx context.Context, website *sites.Website) (*sites.Website, error) {
	var created sites.Website
	if err := c.doJSON(ctx, http.MethodPost, nil, website, &created, pathAPI, pathWebsites); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteWebsite(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, nil, nil, nil, pathAPI, pathWebsites, id)
}

func (c *Client) ListBlockedURLs(ctx context.Context) ([]*sites.BlockedURL, error) {
	var list []*sites.BlockedURL
	if err := c.doJSON(ctx, http.MethodGet, nil, nil, &list, pathAPI, pathBlockedURLs); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) BlockURL(ctx context.Context, rawURL, reason string) (*sites.BlockedURL, error) {
	var created sites.BlockedURL
	in := &sites.BlockedURL{URL: rawURL, Reason: reason}
	if err := c.doJSON(ctx, http.MethodPost, nil, in, &created, pathAPI, pathBlockedURLs); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UnblockURL(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, nil, nil, nil, pathAPI, pathBlockedURLs, id)
}

func (c *Client) IsBlocked(ctx context.Context, rawURL string) (bool, error) {
	var out struct {
		Blocked bool `json:"blocked"`
	}
	query := url.Values{"url": {rawURL}}
	if err := c.doJSON(ctx, http.MethodGet, query, nil, &out, pathAPI, pathBlockedURLs, "check"); err != nil {
		return false, err
	}
	return out.Blocked, nil
}

// UploadReport sends a CSV or JSON report as a multipart form. name may be empty to keep the
// file name.
func (c *Client) UploadReport(ctx context.Context, filename string, r io.Reader, name string) (*report.Report, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, io.LimitReader(r, report.MaxReportSize+1)); err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", filename, err)
	}
	if name != "" {
		if err := form.WriteField("name", name); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	// a *bytes.Buffer body gets a GetBody, so the upload survives a token refresh
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(nil, pathAPI, pathReports), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var rep report.Report
	if err := c.send(ctx, req, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (c *Client) ListReports(ctx context.Context) ([]report.Meta, error) {
	var list []report.Meta
	if err := c.doJSON(ctx, http.MethodGet, nil, nil, &list, pathAPI, pathReports); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetReport(ctx context.Context, id string) (*report.Report, error) {
	var rep report.Report
	if err := c.doJSON(ctx, http.MethodGet, nil, nil, &rep, pathAPI, pathReports, id); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, nil, nil, nil, pathAPI, pathReports, id)
}

// RevokeTokens asks a development backend to reject every token it has accepted so far
func (c *Client) RevokeTokens(ctx context.Context) (int, error) {
	var out struct {
		Revoked int `json:"revoked"`
	}
	if err := c.doJSON(ctx, http.MethodPost, nil, nil, &out, pathAPI, "dev", "revoke-tokens"); err != nil {
		return 0, err
	}
	return out.Revoked, nil
}
