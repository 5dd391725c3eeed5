package config

type Config interface {
	EnvConfig
	OAuthConfig
	StorageConfig
	SweepConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Storage
	Sweep
}

func New() Config {
	return mainConfig{}
}
