package config

import "time"

type SecurityConfig interface {
	GetJWTSecret() string
	GetTokenIssuer() string
	GetTokenAudience() string
	GetTokenExpiry() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetJWTSecret is shared by the local identity provider and the development backend
func (Security) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "dev-secret-change-me")
}

func (Security) GetTokenIssuer() string {
	return GetEnv("TOKEN_ISSUER", "pr-admin")
}

func (Security) GetTokenAudience() string {
	return GetEnv("TOKEN_AUDIENCE", "pr-backend")
}

func (Security) GetTokenExpiry() time.Duration {
	return GetEnvDuration("TOKEN_EXPIRY", 15*time.Minute)
}
