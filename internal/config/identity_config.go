package config

import "strings"

const (
	IdentityModeLocal = "local"
	IdentityModeOIDC  = "oidc"
)

type IdentityConfig interface {
	GetIdentityMode() string
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetOIDCRefreshToken() string
	GetOIDCScopes() []string
}

type Identity struct{}

var _ IdentityConfig = Identity{}

func (Identity) GetIdentityMode() string {
	return strings.ToLower(GetEnv("IDENTITY_MODE", IdentityModeLocal))
}

func (Identity) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}

func (Identity) GetOIDCClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (Identity) GetOIDCClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (Identity) GetOIDCRefreshToken() string {
	return GetEnv("OIDC_REFRESH_TOKEN", "")
}

func (Identity) GetOIDCScopes() []string {
	return strings.Fields(GetEnv("OIDC_SCOPES", "openid email profile offline_access"))
}
