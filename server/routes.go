package server

import (
	"net/http"

	"github.com/jrsteele09/pr-admin-client/users"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.AuthMiddleware(users.RoleViewer)...))

	// Users (admins only)
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.ListUsersHandler(), s.AuthMiddleware(users.RoleAdmin)...))
	s.RegisterRouteHandler("POST "+RouteUsers, ChainMiddleware(s.CreateUserHandler(), s.AuthMiddleware(users.RoleAdmin)...))
	s.RegisterRouteHandler("DELETE "+RouteUser, ChainMiddleware(s.DeleteUserHandler(), s.AuthMiddleware(users.RoleAdmin)...))

	// Websites
	s.RegisterRouteHandler("GET "+RouteWebsites, ChainMiddleware(s.ListWebsitesHandler(), s.AuthMiddleware(users.RoleViewer)...))
	s.RegisterRouteHandler("POST "+RouteWebsites, ChainMiddleware(s.CreateWebsiteHandler(), s.AuthMiddleware(users.RoleEditor)...))
	s.RegisterRouteHandler("DELETE "+RouteWebsite, ChainMiddleware(s.DeleteWebsiteHandler(), s.AuthMiddleware(users.RoleEditor)...))

	// Blocked URLs
	s.RegisterRouteHandler("GET "+RouteBlockedURLs, ChainMiddleware(s.ListBlockedURLsHandler(), s.AuthMiddleware(users.RoleViewer)...))
	s.RegisterRouteHandler("GET "+RouteBlockedURLCheck, ChainMiddleware(s.CheckBlockedURLHandler(), s.AuthMiddleware(users.RoleViewer)...))
	s.RegisterRouteHandler("POST "+RouteBlockedURLs, ChainMiddleware(s.BlockURLHandler(), s.AuthMiddleware(users.RoleEditor)...))
	s.RegisterRouteHandler("DELETE "+RouteBlockedURL, ChainMiddleware(s.UnblockURLHandler(), s.AuthMiddleware(users.RoleEditor)...))

	// Reports
	s.RegisterRouteHandler("GET "+RouteReports, ChainMiddleware(s.ListReportsHandler(), s.AuthMiddleware(users.RoleViewer)...))
	s.RegisterRouteHandler("GET "+RouteReport, ChainMiddleware(s.GetReportHandler(), s.AuthMiddleware(users.RoleViewer)...))
	s.RegisterRouteHandler("POST "+RouteReports, ChainMiddleware(s.UploadReportHandler(), s.AuthMiddleware(users.RoleEditor)...))
	s.RegisterRouteHandler("DELETE "+RouteReport, ChainMiddleware(s.DeleteReportHandler(), s.AuthMiddleware(users.RoleEditor)...))

	if s.env == "DEV" {
		s.RegisterRouteHandler("POST "+RouteDevRevokeTokens, ChainMiddleware(s.RevokeTokensHandler(), s.AuthMiddleware(users.RoleAdmin)...))
	}
}

// HealthHandler reports liveness without authentication
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
