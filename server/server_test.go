package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/pr-admin-client/internal/config"
	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
	"github.com/jrsteele09/pr-admin-client/report"
	fakereportstore "github.com/jrsteele09/pr-admin-client/report/repofake"
	"github.com/jrsteele09/pr-admin-client/server"
	"github.com/jrsteele09/pr-admin-client/sites"
	fakesitesrepo "github.com/jrsteele09/pr-admin-client/sites/repofake"
	"github.com/jrsteele09/pr-admin-client/token"
	"github.com/jrsteele09/pr-admin-client/users"
	fakeuserrepo "github.com/jrsteele09/pr-admin-client/users/repofake"
	"github.com/stretchr/testify/require"
)

const adminPassword = "Valid1Password"

type testFixture struct {
	server *server.Server
	issuer *token.Issuer
	repos  server.Repos
	now    time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "DEV")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", adminPassword)

	f := &testFixture{now: time.Now()}
	cfg := config.New()
	f.issuer = token.NewIssuerFromConfig(cfg, token.WithNowFunc(func() time.Time { return f.now }))
	f.repos = server.Repos{
		Users:       fakeuserrepo.NewFakeUserRepo(),
		Websites:    fakesitesrepo.NewFakeWebsiteRepo(),
		BlockedURLs: fakesitesrepo.NewFakeBlockedURLRepo(),
		Reports:     fakereportstore.NewFakeReportStore(),
	}

	s, err := server.New(cfg, f.issuer, f.repos)
	require.NoError(t, err)
	f.server = s
	return f
}

func (f *testFixture) token(t *testing.T, role users.RoleType) string {
	t.Helper()
	raw, _, err := f.issuer.Issue("user-"+string(role), string(role)+"@example.com", string(role))
	require.NoError(t, err)
	return raw
}

func (f *testFixture) do(t *testing.T, method, path, tok string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if tok != "" {
		req.Header.Set(config.DefaultTokenHeader, "Bearer "+tok)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) doJSON(t *testing.T, method, path, tok string, in any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		require.NoError(t, err)
		body = bytes.NewReader(buf)
	}
	return f.do(t, method, path, tok, body, "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestBootstrapSeedsAdmin(t *testing.T) {
	f := setupTestFixture(t)

	admin, err := f.repos.Users.GetByEmail("admin@example.com")
	require.NoError(t, err)
	require.Equal(t, users.RoleAdmin, admin.Role)
	require.True(t, admin.CheckPassword(adminPassword))
}

func TestHealthNeedsNoToken(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, server.RouteHealth, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequireToken(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, server.RouteMe, "", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, server.RouteMe, "not-a-jwt", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, server.RouteMe, nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, users.RoleAdmin))
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "the standard header is not read")

	tok := f.token(t, users.RoleViewer)
	rec = f.do(t, http.MethodGet, server.RouteMe, tok, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	claims := decode[token.Claims](t, rec)
	require.Equal(t, "user-viewer", claims.Subject)
	require.Equal(t, "viewer", claims.Role)

	f.now = f.now.Add(time.Hour)
	rec = f.do(t, http.MethodGet, server.RouteMe, tok, nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Token expired")
}

func TestRequireRole(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, server.RouteUsers, f.token(t, users.RoleEditor), nil, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "admin role required: "+apperrors.ErrInsufficientRole.Error())

	rec = f.do(t, http.MethodGet, server.RouteUsers, f.token(t, users.RoleAdmin), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]users.User](t, rec)
	require.Len(t, list, 1)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestUserCRUD(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.token(t, users.RoleAdmin)

	rec := f.doJSON(t, http.MethodPost, server.RouteUsers, admin, users.CreateRequest{
		Email: "ed@example.com", Password: "Valid1Password", Role: users.RoleEditor,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[users.User](t, rec)

	rec = f.doJSON(t, http.MethodPost, server.RouteUsers, admin, users.CreateRequest{
		Email: "ed@example.com", Password: "Valid1Password", Role: users.RoleEditor,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.doJSON(t, http.MethodPost, server.RouteUsers, admin, users.CreateRequest{
		Email: "weak@example.com", Password: "weak", Role: users.RoleEditor,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/users/"+created.ID, admin, nil, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/users/"+created.ID, admin, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebsitesRespectBlockList(t *testing.T) {
	f := setupTestFixture(t)
	editor := f.token(t, users.RoleEditor)
	viewer := f.token(t, users.RoleViewer)

	rec := f.doJSON(t, http.MethodPost, server.RouteBlockedURLs, editor, sites.BlockedURL{URL: "https://www.spam.example/", Reason: "spam"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	blocked := decode[sites.BlockedURL](t, rec)

	rec = f.doJSON(t, http.MethodPost, server.RouteBlockedURLs, editor, sites.BlockedURL{URL: "spam.example"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/blocked-urls/check?url=SPAM.example", viewer, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode[map[string]any](t, rec)["blocked"])

	rec = f.doJSON(t, http.MethodPost, server.RouteWebsites, editor, sites.Website{Name: "Spam", URL: "http://spam.example"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.doJSON(t, http.MethodPost, server.RouteWebsites, viewer, sites.Website{Name: "Daily", URL: "daily.example"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.doJSON(t, http.MethodPost, server.RouteWebsites, editor, sites.Website{Name: "Daily", URL: "daily.example", DomainAuthority: 70})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.doJSON(t, http.MethodPost, server.RouteWebsites, editor, sites.Website{Name: "", URL: "x.example"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, server.RouteWebsites, viewer, nil, "")
	require.Len(t, decode[[]sites.Website](t, rec), 1)

	rec = f.do(t, http.MethodDelete, "/api/blocked-urls/"+blocked.ID, editor, nil, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.doJSON(t, http.MethodPost, server.RouteWebsites, editor, sites.Website{Name: "Spam", URL: "http://spam.example"})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func multipartReport(t *testing.T, filename, content, name string) (io.Reader, string) {
	t.Helper()
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile(server.ReportFormField, filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	if name != "" {
		require.NoError(t, form.WriteField("name", name))
	}
	require.NoError(t, form.Close())
	return &body, form.FormDataContentType()
}

func TestReportUpload(t *testing.T) {
	f := setupTestFixture(t)
	editor := f.token(t, users.RoleEditor)

	csv := "Outlet Name,Link,Potential Reach,DA\nDaily Planet,https://dailyplanet.example/pr,\"1,200\",80\nGotham Gazette,gotham.example,1.5K,n/a\n"
	body, contentType := multipartReport(t, "october.csv", csv, "October")
	rec := f.do(t, http.MethodPost, server.RouteReports, editor, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rep := decode[report.Report](t, rec)
	require.Equal(t, "October", rep.Name)
	require.Equal(t, report.FormatCSV, rep.Format)
	require.Len(t, rep.Rows, 2)
	require.Equal(t, int64(2700), rep.Summary.TotalReach)

	rec = f.do(t, http.MethodGet, server.RouteReports, editor, nil, "")
	metas := decode[[]report.Meta](t, rec)
	require.Len(t, metas, 1)
	require.Equal(t, rep.ID, metas[0].ID)

	rec = f.do(t, http.MethodGet, "/api/reports/"+rep.ID, editor, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body, contentType = multipartReport(t, "mystery.csv", "foo,bar\n1,2\n", "")
	rec = f.do(t, http.MethodPost, server.RouteReports, editor, body, contentType)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType = multipartReport(t, "sheet.xlsx", "PK", "")
	rec = f.do(t, http.MethodPost, server.RouteReports, editor, body, contentType)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, server.RouteReports, editor, strings.NewReader("{}"), "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/reports/"+rep.ID, editor, nil, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRevokeTokens(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.token(t, users.RoleAdmin)
	viewer := f.token(t, users.RoleViewer)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, server.RouteMe, viewer, nil, "").Code)

	rec := f.do(t, http.MethodPost, server.RouteDevRevokeTokens, admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, decode[map[string]int](t, rec)["revoked"])

	rec = f.do(t, http.MethodGet, server.RouteMe, viewer, nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Token revoked")

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, server.RouteMe, f.token(t, users.RoleViewer), nil, "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	f.do(t, http.MethodGet, server.RouteHealth, "", nil, "")

	rec := f.do(t, http.MethodGet, server.RouteMetrics, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `pradmin_devbackend_requests_total{route="GET /api/health",status="200"} 1`)
}

func TestRecoverAnswersInternalError(t *testing.T) {
	f := setupTestFixture(t)
	f.server.RegisterRouteFunc("GET /api/panics", server.ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}, f.server.APIMiddleware()...))

	rec := f.do(t, http.MethodGet, "/api/panics", "", nil, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), apperrors.ErrInternal.Error())
}
