package sessions

import (
	"time"
)

// Stage is the session's position in the authorization lifecycle.
type Stage string

const (
	StagePending    Stage = "pending"
	StageAuthorized Stage = "authorized"
)

// Session tracks one CLI's authorization lifecycle and the provider
// tokens bound to it. The identifier itself is the store key and is
// never embedded in the record.
//
// PublicState is set only while the session is pending and an
// authorization redirect is in flight; it is the CSRF correlation value
// echoed back by the provider and must be unique across live sessions.
// CreatedAt is rewritten every time tokens are (re)written, anchoring
// the expiry computation for transparent refresh.
type Session struct {
	Stage        Stage  `json:"stage"`
	CreatedAt    int64  `json:"created_at"`
	PublicState  string `json:"public_state,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// New returns a fresh pending session.
func New(now time.Time) *Session {
	return &Session{
		Stage:     StagePending,
		CreatedAt: now.Unix(),
	}
}

func (s *Session) Authorized() bool {
	return s.Stage == StageAuthorized
}

// ExpiresAt returns the absolute access-token expiry, or the zero time
// when the provider issued no lifetime.
func (s *Session) ExpiresAt() time.Time {
	if s.ExpiresIn == 0 {
		return time.Time{}
	}
	return time.Unix(s.CreatedAt+s.ExpiresIn, 0)
}

// NeedsRefresh reports whether a proxied call at now must refresh the
// access token first. margin is the safety window before the hard
// expiry.
func (s *Session) NeedsRefresh(now time.Time, margin time.Duration) bool {
	expiresAt := s.ExpiresAt()
	if expiresAt.IsZero() {
		return false
	}
	return now.After(expiresAt.Add(-margin))
}

// Token is the subset of a provider token response merged into the
// session on authorization and on refresh.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	ExpiresIn    int64
}

// ApplyToken merges a provider token response into the session, marks
// it authorized and re-anchors CreatedAt. Fields the provider omitted
// (a refresh response may carry no new refresh token) keep their prior
// values.
func (s *Session) ApplyToken(tok Token, now time.Time) {
	if tok.AccessToken != "" {
		s.AccessToken = tok.AccessToken
	}
	if tok.RefreshToken != "" {
		s.RefreshToken = tok.RefreshToken
	}
	if tok.TokenType != "" {
		s.TokenType = tok.TokenType
	}
	if tok.Scope != "" {
		s.Scope = tok.Scope
	}
	if tok.ExpiresIn != 0 {
		s.ExpiresIn = tok.ExpiresIn
	}
	s.Stage = StageAuthorized
	s.PublicState = ""
	s.CreatedAt = now.Unix()
}
