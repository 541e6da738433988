package config

type Config interface {
	EnvConfig
	ClientConfig
	IdentityConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetAdminEmail() string
	GetAdminPassword() string
}

type mainConfig struct {
	EnvVars
	Client
	Identity
	Security
}

func New() Config {
	return mainConfig{}
}
