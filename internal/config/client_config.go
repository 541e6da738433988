package config

import "time"

// DefaultTokenHeader carries the bearer token in place of Authorization
const DefaultTokenHeader = "X-Auth-Token"

type ClientConfig interface {
	GetBackendURL() string
	GetTokenHeader() string
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetBackendURL() string {
	return GetEnv("BACKEND_URL", "http://localhost:8081")
}

func (Client) GetTokenHeader() string {
	return GetEnv("TOKEN_HEADER", DefaultTokenHeader)
}

func (Client) GetRequestTimeout() time.Duration {
	return GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
}

// GetRefreshTimeout bounds a forced token refresh. Zero disables the bound.
func (Client) GetRefreshTimeout() time.Duration {
	return GetEnvDuration("REFRESH_TIMEOUT", 15*time.Second)
}
