package server

import (
	"fmt"

	"github.com/jrsteele09/pr-admin-client/internal/config"
	"github.com/jrsteele09/pr-admin-client/users"
	"github.com/rs/zerolog/log"
)

// InitialiseSystem seeds the admin account the dashboard signs in with
func (s *Server) InitialiseSystem(cfg config.Config) error {
	if s.repos.Users == nil {
		return fmt.Errorf("[Server InitialiseSystem] a user repo is required")
	}

	email := cfg.GetAdminEmail()
	generatedPassword, err := users.SeedAdmin(s.repos.Users, email, cfg.GetAdminPassword())
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to seed admin: %w", err)
	}

	if generatedPassword != "" {
		log.Info().Msg("Admin credentials:")
		log.Info().Msgf("   Email:       %s", email)
		log.Info().Msgf("   Password:    %s", generatedPassword)
	}
	return nil
}
