package server

// Route path constants
const (
	RouteHealth  = "/api/health"
	RouteMe      = "/api/me"
	RouteMetrics = "/metrics"

	RouteUsers = "/api/users"
	RouteUser  = "/api/users/{id}"

	RouteWebsites = "/api/websites"
	RouteWebsite  = "/api/websites/{id}"

	RouteBlockedURLs     = "/api/blocked-urls"
	RouteBlockedURL      = "/api/blocked-urls/{id}"
	RouteBlockedURLCheck = "/api/blocked-urls/check"

	RouteReports = "/api/reports"
	RouteReport  = "/api/reports/{id}"

	// Development only: invalidates every token seen so far
	RouteDevRevokeTokens = "/api/dev/revoke-tokens"
)
