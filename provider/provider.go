// Package provider talks to the upstream OAuth provider: building the
// authorization redirect, exchanging codes, refreshing tokens and
// forwarding API calls with a bearer token. The broker holds the
// client credentials here; they never reach the CLI or the browser.
package provider

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/quackd/quack/internal/config"
	"github.com/quackd/quack/internal/errors"
	"github.com/quackd/quack/sessions"
)

type Client struct {
	oauth      *oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// New builds a provider client from configuration. When an OIDC issuer
// is configured, the authorize and token endpoints are resolved through
// discovery; otherwise the statically configured URLs are used.
func New(ctx context.Context, cfg config.OAuthConfig, redirectURL string) (*Client, error) {
	endpoint := oauth2.Endpoint{
		AuthURL:  cfg.GetAuthURL(),
		TokenURL: cfg.GetTokenURL(),
	}
	if issuer := cfg.GetIssuer(); issuer != "" {
		oidcProvider, err := oidc.NewProvider(ctx, issuer)
		if err != nil {
			return nil, errors.Wrapf(err, "provider.New discovery %q", issuer)
		}
		endpoint = oidcProvider.Endpoint()
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint:     endpoint,
			RedirectURL:  redirectURL,
			Scopes:       strings.Fields(cfg.GetScope()),
		},
		apiURL:     strings.TrimSuffix(cfg.GetAPIURL(), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// AuthCodeURL returns the provider authorization URL carrying
// client_id, redirect_uri, response_type=code, the configured scope and
// the given state. No network call is made.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (sessions.Token, error) {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return sessions.Token{}, errors.Wrapf(err, "provider.Exchange")
	}
	return toSessionToken(tok), nil
}

// Refresh performs a refresh_token grant and returns the new token
// fields. The provider may omit a new refresh token, in which case the
// caller keeps the old one.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (sessions.Token, error) {
	tok, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return sessions.Token{}, errors.Wrapf(err, "provider.Refresh")
	}
	return toSessionToken(tok), nil
}

// APIResponse carries a provider API response verbatim.
type APIResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Get forwards an API call to the provider host with the given bearer
// token and returns status and body untouched.
func (c *Client) Get(ctx context.Context, path, accessToken string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "provider.Get request %q", path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "provider.Get %q", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "provider.Get read body %q", path)
	}
	return &APIResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func toSessionToken(tok *oauth2.Token) sessions.Token {
	expiresIn := tok.ExpiresIn
	if expiresIn == 0 && !tok.Expiry.IsZero() {
		expiresIn = int64(time.Until(tok.Expiry).Seconds())
	}
	scope, _ := tok.Extra("scope").(string)
	return sessions.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Scope:        scope,
		ExpiresIn:    expiresIn,
	}
}
