package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/pr-admin-client/backend"
	"github.com/jrsteele09/pr-admin-client/internal/config"
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

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Valid1Password"
)

// startBackend runs the development backend and points the local sign-in at its admin
func startBackend(t *testing.T) string {
	t.Helper()
	t.Setenv("ENV", "DEV")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("IDENTITY_MODE", config.IdentityModeLocal)
	t.Setenv("ADMIN_EMAIL", adminEmail)
	t.Setenv("ADMIN_PASSWORD", adminPassword)
	t.Setenv("JWT_SECRET", "cli-test-secret")

	cfg := config.New()
	s, err := server.New(cfg, token.NewIssuerFromConfig(cfg), server.Repos{
		Users:       fakeuserrepo.NewFakeUserRepo(),
		Websites:    fakesitesrepo.NewFakeWebsiteRepo(),
		BlockedURLs: fakesitesrepo.NewFakeBlockedURLRepo(),
		Reports:     fakereportstore.NewFakeReportStore(),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return srv.URL
}

func runApp(t *testing.T, backendURL string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"prclient", "--backend", backendURL}, args...))
	return out.String(), err
}

func runJSON(t *testing.T, backendURL string, v any, args ...string) {
	t.Helper()
	out, err := runApp(t, backendURL, append([]string{"--no-banner", "-o", outputJSON}, args...)...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestAppCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range App().Commands {
		names[cmd.Name] = true
	}
	for _, name := range []string{"me", "dashboard", "users", "websites", "blocked", "reports", "burst"} {
		require.True(t, names[name], "missing command %s", name)
	}
}

func TestBannerAndTableOutput(t *testing.T) {
	backendURL := startBackend(t)

	out, err := runApp(t, backendURL, "me")
	require.NoError(t, err)
	require.Contains(t, out, figure.NewFigure("PR Admin", "cybermedium", true).String())
	require.Contains(t, out, adminEmail)
	require.Contains(t, out, string(users.RoleAdmin))

	out, err = runApp(t, backendURL, "--no-banner", "me")
	require.NoError(t, err)
	require.NotContains(t, out, figure.NewFigure("PR Admin", "cybermedium", true).String())
}

func TestLocalSignInNeedsPassword(t *testing.T) {
	backendURL := startBackend(t)
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := runApp(t, backendURL, "--no-banner", "me")
	require.ErrorContains(t, err, "--login-password")

	_, err = runApp(t, backendURL, "--no-banner", "--identity", "saml", "--login-password", adminPassword, "me")
	require.ErrorContains(t, err, "unknown identity mode")
}

func TestUnknownOutputFormat(t *testing.T) {
	backendURL := startBackend(t)
	_, err := runApp(t, backendURL, "--no-banner", "-o", "xml", "me")
	require.ErrorContains(t, err, "unknown output format")
}

func TestUsersCreateAndList(t *testing.T) {
	backendURL := startBackend(t)

	var created users.User
	runJSON(t, backendURL, &created, "users", "create", "--email", "Jane@Example.com", "--name", "Jane",
		"--password", "Another1Password", "--role", "editor")
	require.Equal(t, "jane@example.com", created.Email)
	require.Equal(t, users.RoleEditor, created.Role)

	var list []users.User
	runJSON(t, backendURL, &list, "users", "list")
	require.Len(t, list, 2)

	_, err := runApp(t, backendURL, "--no-banner", "users", "delete")
	require.ErrorContains(t, err, "USER_ID is required")

	runJSON(t, backendURL, &map[string]string{}, "users", "delete", created.ID)
	runJSON(t, backendURL, &list, "users", "list")
	require.Len(t, list, 1)
}

func TestWebsitesAndBlockList(t *testing.T) {
	backendURL := startBackend(t)

	var blocked sites.BlockedURL
	runJSON(t, backendURL, &blocked, "blocked", "add", "--reason", "spam", "https://www.spam.example/")

	_, err := runApp(t, backendURL, "--no-banner", "websites", "create", "--name", "Spam", "--url", "spam.example")
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 409, apiErr.StatusCode())

	var website sites.Website
	runJSON(t, backendURL, &website, "websites", "create", "--name", "Daily", "--url", "https://daily.example",
		"--category", "news", "--da", "71", "--price", "250")
	require.Equal(t, 71, website.DomainAuthority)

	out, err := runApp(t, backendURL, "--no-banner", "-o", outputYAML, "blocked", "check", "spam.example")
	require.NoError(t, err)
	require.Contains(t, out, "blocked: true")

	out, err = runApp(t, backendURL, "--no-banner", "websites", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Daily")
	require.Contains(t, out, "250.00")

	runJSON(t, backendURL, &map[string]string{}, "blocked", "remove", blocked.ID)
	var list []sites.BlockedURL
	runJSON(t, backendURL, &list, "blocked", "list")
	require.Empty(t, list)
}

func TestReportUploadAndDashboard(t *testing.T) {
	backendURL := startBackend(t)
	path := filepath.Join(t.TempDir(), "april.csv")
	csv := "Outlet Name,URL,Potential Reach,DA\nDaily,https://daily.example,\"1,200\",70\nWeekly,weekly.example,1.5K,50\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	var uploaded report.Report
	runJSON(t, backendURL, &uploaded, "reports", "upload", "--name", "April", path)
	require.Equal(t, "April", uploaded.Name)
	require.Equal(t, int64(2700), uploaded.Summary.TotalReach)
	require.Empty(t, uploaded.Rows)

	var full report.Report
	runJSON(t, backendURL, &full, "reports", "get", "--rows", uploaded.ID)
	require.Len(t, full.Rows, 2)

	var d backend.Dashboard
	runJSON(t, backendURL, &d, "dashboard")
	require.Equal(t, 1, d.Users)
	require.Equal(t, 1, d.Reports)
	require.Equal(t, int64(2700), d.TotalReach)
}

func TestBurstRefreshesRevokedTokens(t *testing.T) {
	backendURL := startBackend(t)

	var result BurstResult
	runJSON(t, backendURL, &result, "burst", "--n", "6", "--revoke")
	require.Equal(t, 6, result.Succeeded)
	require.Zero(t, result.Failed)
	require.Equal(t, 1, result.Revoked)
	require.GreaterOrEqual(t, result.Refreshes["success"], 1)
	require.GreaterOrEqual(t, result.Retries, 1)

	_, err := runApp(t, backendURL, "--no-banner", "burst", "--n", "0")
	require.ErrorContains(t, err, "--n must be at least 1")
}
