package sessions_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quackd/quack/sessions"
)

func TestNewSessionIsPending(t *testing.T) {
	now := time.Now()
	session := sessions.New(now)
	require.Equal(t, sessions.StagePending, session.Stage)
	require.Equal(t, now.Unix(), session.CreatedAt)
	require.False(t, session.Authorized())
}

func TestExpiresAt(t *testing.T) {
	session := sessions.New(time.Now())
	require.True(t, session.ExpiresAt().IsZero(), "no provider lifetime means no expiry")

	session.ExpiresIn = 7200
	require.Equal(t, time.Unix(session.CreatedAt+7200, 0), session.ExpiresAt())
}

func TestNeedsRefresh(t *testing.T) {
	const margin = 30 * time.Second
	now := time.Now()

	session := sessions.New(now)
	require.False(t, session.NeedsRefresh(now, margin), "sessions without expires_in never refresh")

	session.ExpiresIn = 7200
	require.False(t, session.NeedsRefresh(now, margin))
	require.False(t, session.NeedsRefresh(now.Add(7200*time.Second-margin-time.Second), margin))
	require.True(t, session.NeedsRefresh(now.Add(7200*time.Second-margin+time.Second), margin))
	require.True(t, session.NeedsRefresh(now.Add(7200*time.Second), margin))
}

func TestApplyTokenMergesAndReanchors(t *testing.T) {
	session := sessions.New(time.Now().Add(-time.Hour))
	session.PublicState = "in-flight-state"

	authorizedAt := time.Now()
	session.ApplyToken(sessions.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "bearer",
		Scope:        "public",
		ExpiresIn:    7200,
	}, authorizedAt)

	require.True(t, session.Authorized())
	require.Empty(t, session.PublicState)
	require.Equal(t, authorizedAt.Unix(), session.CreatedAt)

	// A refresh response without a new refresh token keeps the old one.
	session.ApplyToken(sessions.Token{AccessToken: "access-2", ExpiresIn: 3600}, authorizedAt.Add(time.Hour))
	require.Equal(t, "access-2", session.AccessToken)
	require.Equal(t, "refresh-1", session.RefreshToken)
	require.EqualValues(t, 3600, session.ExpiresIn)
	require.Equal(t, authorizedAt.Add(time.Hour).Unix(), session.CreatedAt)
}
