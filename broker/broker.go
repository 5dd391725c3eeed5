// Package broker implements the session/token state machine: session
// creation with one-time redirect tokens, the authorize/callback
// exchange binding a provider identity to a session, and the
// authenticated proxy path with transparent refresh.
package broker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/quackd/quack/internal/errors"
	"github.com/quackd/quack/provider"
	"github.com/quackd/quack/redirecttokens"
	"github.com/quackd/quack/sessions"
)

// Provider is the slice of the upstream OAuth provider the broker
// drives. *provider.Client implements it.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (sessions.Token, error)
	Refresh(ctx context.Context, refreshToken string) (sessions.Token, error)
	Get(ctx context.Context, path, accessToken string) (*provider.APIResponse, error)
}

// Repos groups the persistent keyspaces the broker operates on.
type Repos struct {
	Sessions       sessions.Repo
	RedirectTokens redirecttokens.Repo
}

type Service struct {
	sessions      sessions.Repo
	issuer        *redirecttokens.Issuer
	provider      Provider
	loginURL      string
	refreshMargin time.Duration
}

// New wires the broker. loginURL is the absolute browser-facing login
// endpoint the one-time token is appended to; refreshMargin is the
// safety window before token expiry that triggers a refresh on proxy.
func New(repos Repos, prov Provider, loginURL string, tokenTTL, refreshMargin time.Duration) *Service {
	return &Service{
		sessions:      repos.Sessions,
		issuer:        redirecttokens.NewIssuer(repos.RedirectTokens, tokenTTL),
		provider:      prov,
		loginURL:      loginURL,
		refreshMargin: refreshMargin,
	}
}

// NewSession creates a pending session and returns its private id
// together with the browser login URL. The URL carries only the
// one-time redirect token; the session id is for the CLI alone.
func (s *Service) NewSession(ctx context.Context) (sid, loginURL string, err error) {
	sid = uuid.NewString()
	if err := s.sessions.Upsert(ctx, sid, sessions.New(time.Now())); err != nil {
		return "", "", errors.Wrapf(err, "broker.NewSession")
	}
	token, err := s.issuer.Issue(ctx, sid)
	if err != nil {
		return "", "", err
	}
	return sid, s.loginURL + "?token=" + token, nil
}

// BeginLogin resolves a session from either a trusted session id or a
// one-time redirect token, binds a fresh public state to it and returns
// the provider authorization URL to redirect the browser to. A prior
// in-flight state is overwritten; only the most recent login attempt
// stays valid.
func (s *Service) BeginLogin(ctx context.Context, sid, token string) (string, error) {
	if sid == "" && token != "" {
		resolved, err := s.issuer.Resolve(ctx, token)
		if err != nil {
			return "", errors.ErrMissingOrInvalidSession
		}
		sid = resolved
	}
	if sid == "" {
		return "", errors.ErrMissingOrInvalidSession
	}

	session, err := s.sessions.Get(ctx, sid)
	if err != nil {
		return "", err
	}

	session.PublicState = newPublicState()
	if err := s.sessions.Upsert(ctx, sid, session); err != nil {
		return "", errors.Wrapf(err, "broker.BeginLogin")
	}
	return s.provider.AuthCodeURL(session.PublicState), nil
}

// HandleCallback matches the provider-echoed state to its waiting
// session, exchanges the code for tokens and marks the session
// authorized. The owning session is found by linear scan; states are
// high-entropy and unique across live sessions, so at most one record
// matches.
func (s *Service) HandleCallback(ctx context.Context, code, state string) error {
	if state == "" {
		return errors.ErrMissingState
	}

	all, err := s.sessions.All(ctx)
	if err != nil {
		return errors.Wrapf(err, "broker.HandleCallback")
	}
	var sid string
	var session *sessions.Session
	for id, candidate := range all {
		if candidate.PublicState != "" && candidate.PublicState == state {
			sid, session = id, candidate
			break
		}
	}
	if session == nil {
		return errors.ErrUnknownState
	}

	tok, err := s.provider.Exchange(ctx, code)
	if err != nil || tok.AccessToken == "" {
		return errors.ErrTokenExchangeFailed
	}

	session.ApplyToken(tok, time.Now())
	if err := s.sessions.Upsert(ctx, sid, session); err != nil {
		return errors.Wrapf(err, "broker.HandleCallback persist")
	}
	return nil
}

// Status reports the session's lifecycle stage and touches its
// modification time so polling keeps it alive against the sweep.
func (s *Service) Status(ctx context.Context, sid string) (sessions.Stage, error) {
	if sid == "" {
		return "", errors.ErrUnknownSession
	}
	session, err := s.sessions.Get(ctx, sid)
	if err != nil {
		return "", err
	}
	_ = s.sessions.Touch(ctx, sid)
	if !session.Authorized() {
		return sessions.StagePending, nil
	}
	return sessions.StageAuthorized, nil
}

// Proxy forwards an API call on behalf of the session, refreshing the
// access token first when it is within the safety margin of expiry. A
// failed refresh destroys the session; the caller must restart the
// login flow.
func (s *Service) Proxy(ctx context.Context, sid, path string) (*provider.APIResponse, error) {
	if sid == "" || path == "" {
		return nil, errors.ErrMissingParams
	}
	session, err := s.sessions.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !session.Authorized() {
		return nil, errors.ErrNotAuthorized
	}

	if session.NeedsRefresh(time.Now(), s.refreshMargin) {
		tok, err := s.provider.Refresh(ctx, session.RefreshToken)
		if err != nil || tok.AccessToken == "" {
			_ = s.sessions.Delete(ctx, sid)
			return nil, errors.ErrSessionExpired
		}
		session.ApplyToken(tok, time.Now())
		if err := s.sessions.Upsert(ctx, sid, session); err != nil {
			return nil, errors.Wrapf(err, "broker.Proxy persist refresh")
		}
	}

	resp, err := s.provider.Get(ctx, path, session.AccessToken)
	if err != nil {
		return nil, err
	}
	_ = s.sessions.Touch(ctx, sid)
	return resp, nil
}

// newPublicState mints the CSRF correlation value sent to the
// provider. 128 bits of entropy keeps states unique across live
// sessions.
func newPublicState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
