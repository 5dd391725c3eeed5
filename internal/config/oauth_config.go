package config

import "time"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetAuthURL() string
	GetTokenURL() string
	GetAPIURL() string
	GetScope() string
	GetIssuer() string
	GetRedirectTokenTTL() time.Duration
	GetRefreshMargin() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetClientID() string {
	return GetEnv("OAUTH_CLIENT_ID", "")
}

func (OAuth) GetClientSecret() string {
	return GetEnv("OAUTH_CLIENT_SECRET", "")
}

func (OAuth) GetAuthURL() string {
	return GetEnv("OAUTH_AUTH_URL", "https://api.intra.42.fr/oauth/authorize")
}

func (OAuth) GetTokenURL() string {
	return GetEnv("OAUTH_TOKEN_URL", "https://api.intra.42.fr/oauth/token")
}

// GetAPIURL returns the provider API host that proxied calls are
// forwarded to.
func (OAuth) GetAPIURL() string {
	return GetEnv("OAUTH_API_URL", "https://api.intra.42.fr")
}

func (OAuth) GetScope() string {
	return GetEnv("OAUTH_SCOPE", "public")
}

// GetIssuer returns an optional OIDC issuer URL. When set, the provider
// authorize and token endpoints are resolved through OIDC discovery
// instead of OAUTH_AUTH_URL/OAUTH_TOKEN_URL.
func (OAuth) GetIssuer() string {
	return GetEnv("OAUTH_ISSUER", "")
}

// GetRedirectTokenTTL is the validity window of the one-time browser
// login token.
func (OAuth) GetRedirectTokenTTL() time.Duration {
	return getDurationEnv("REDIRECT_TOKEN_TTL", 10*time.Minute)
}

// GetRefreshMargin is the safety margin before access-token expiry at
// which a proxied call triggers a refresh.
func (OAuth) GetRefreshMargin() time.Duration {
	return getDurationEnv("REFRESH_MARGIN", 30*time.Second)
}

func getDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
