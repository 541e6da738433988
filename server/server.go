// Package server is a development stand-in for the admin backend. It serves the JSON API the
// dashboard client talks to and accepts only bearer tokens from the configured issuer.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/pr-admin-client/internal/config"
	"github.com/jrsteele09/pr-admin-client/report"
	"github.com/jrsteele09/pr-admin-client/sites"
	"github.com/jrsteele09/pr-admin-client/token"
	"github.com/jrsteele09/pr-admin-client/users"
	"github.com/prometheus/client_golang/prometheus"
)

// Repos are the stores behind the API
type Repos struct {
	Users       users.Repo
	Websites    sites.WebsiteRepo
	BlockedURLs sites.BlockedURLRepo
	Reports     report.Store
}

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	issuer      *token.Issuer
	repos       Repos
	tokenHeader string
	revoked     *revocationList
	registry    *prometheus.Registry
	metrics     *serverMetrics
}

func New(cfg config.Config, issuer *token.Issuer, repos Repos) (*Server, error) {
	if issuer == nil {
		return nil, fmt.Errorf("[Server New] a token issuer is required")
	}

	s := &Server{
		env:         cfg.GetEnv(),
		mux:         http.NewServeMux(),
		config:      cfg,
		issuer:      issuer,
		repos:       repos,
		tokenHeader: cfg.GetTokenHeader(),
		revoked:     newRevocationList(),
		registry:    prometheus.NewRegistry(),
	}
	s.metrics = newServerMetrics(s.registry)

	if err := s.InitialiseSystem(cfg); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Registry exposes the collectors served on /metrics so callers can add their own
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}
