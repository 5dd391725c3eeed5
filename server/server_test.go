package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quackd/quack/broker"
	"github.com/quackd/quack/internal/config"
	"github.com/quackd/quack/provider"
	tokenfakes "github.com/quackd/quack/redirecttokens/repofakes"
	"github.com/quackd/quack/server"
	sessionfakes "github.com/quackd/quack/sessions/repofakes"
)

const (
	testBaseURL     = "http://broker.test"
	upstreamAccess  = "upstream-access-token"
	upstreamRefresh = "upstream-refresh-token"
)

// testConfig overrides the provider endpoints to point at the stubbed
// upstream.
type testConfig struct {
	config.Config
	tokenURL string
	apiURL   string
}

func (c testConfig) GetBaseURL() string  { return testBaseURL }
func (c testConfig) GetTokenURL() string { return c.tokenURL }
func (c testConfig) GetAPIURL() string   { return c.apiURL }
func (c testConfig) GetClientID() string { return "client-id-1" }
func (c testConfig) GetEnv() string      { return "TEST" }

type testFixture struct {
	server      *server.Server
	sessionRepo *sessionfakes.FakeSessionRepo
	upstream    *httptest.Server
}

// setupTestFixture wires a broker server against a stubbed OAuth
// provider that accepts any code and serves /v2/me.
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  upstreamAccess,
			"token_type":    "bearer",
			"expires_in":    7200,
			"refresh_token": upstreamRefresh,
			"scope":         "public",
		})
	})
	mux.HandleFunc("GET /v2/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+upstreamAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"duck"}`))
	})
	mux.HandleFunc("GET /v2/teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"error":"short and stout"}`))
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	cfg := testConfig{
		Config:   config.New(),
		tokenURL: upstream.URL + "/oauth/token",
		apiURL:   upstream.URL,
	}

	prov, err := provider.New(t.Context(), cfg, testBaseURL+server.RouteCallback)
	require.NoError(t, err)

	sr := sessionfakes.NewFakeSessionRepo()
	repos := broker.Repos{
		Sessions:       sr,
		RedirectTokens: tokenfakes.NewFakeTokenRepo(),
	}

	return &testFixture{
		server:      server.New(cfg, repos, prov),
		sessionRepo: sr,
		upstream:    upstream,
	}
}

func (f *testFixture) do(t *testing.T, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

// newSession drives /newsession and returns the private sid and the
// one-time login token from the returned URL.
func (f *testFixture) newSession(t *testing.T) (sid, loginToken string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/newsession", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sid = rec.Header().Get("Session")
	require.NotEmpty(t, sid)

	var body struct {
		LoginURL string `json:"login_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotContains(t, body.LoginURL, sid, "login URL must carry the token, never the session id")

	parsed, err := url.Parse(body.LoginURL)
	require.NoError(t, err)
	require.Equal(t, server.RouteLogin, parsed.Path)
	loginToken = parsed.Query().Get("token")
	require.NotEmpty(t, loginToken)
	return sid, loginToken
}

// login follows the browser leg and returns the state bound to the
// session.
func (f *testFixture) login(t *testing.T, loginToken string) string {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/login?token="+loginToken, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "client-id-1", location.Query().Get("client_id"))
	require.Equal(t, "code", location.Query().Get("response_type"))
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestFullAuthorizationFlow(t *testing.T) {
	f := setupTestFixture(t)

	sid, loginToken := f.newSession(t)

	rec := f.do(t, http.MethodGet, "/status", map[string]string{"Authorization": "Session " + sid})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"pending"}`, rec.Body.String())

	state := f.login(t, loginToken)

	rec = f.do(t, http.MethodGet, "/callback?code=any-code&state="+state, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Authorized!")

	rec = f.do(t, http.MethodGet, "/status", map[string]string{"Authorization": "Session " + sid})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"authorized"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/proxy?path=/v2/me", map[string]string{"Session": sid})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"login":"duck"}`, rec.Body.String())
}

func TestProxyPassesUpstreamStatusThrough(t *testing.T) {
	f := setupTestFixture(t)

	sid, loginToken := f.newSession(t)
	state := f.login(t, loginToken)
	f.do(t, http.MethodGet, "/callback?code=any-code&state="+state, nil)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/proxy?session=%s&path=/v2/teapot", sid), nil)
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.JSONEq(t, `{"error":"short and stout"}`, rec.Body.String())
}

func TestLoginTokenIsSingleUse(t *testing.T) {
	f := setupTestFixture(t)

	_, loginToken := f.newSession(t)
	f.login(t, loginToken)

	rec := f.do(t, http.MethodGet, "/login?token="+loginToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Missing or invalid session token")
}

func TestLoginWithoutCredential(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/login", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackMissingState(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/callback?code=any-code", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Missing state")
}

func TestCallbackUnknownState(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/callback?code=any-code&state=bogus", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Unknown or expired state")
}

func TestCallbackProviderErrorPassthrough(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/callback?error=access_denied&error_description=nope", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "access_denied")
}

func TestStatusUnknownSession(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/status?session=never-created", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"unknown"}`, rec.Body.String())
}

func TestProxyErrorMapping(t *testing.T) {
	f := setupTestFixture(t)
	sid, _ := f.newSession(t)

	tests := []struct {
		name     string
		target   string
		headers  map[string]string
		wantCode int
		wantBody string
	}{
		{"missing params", "/proxy", nil, http.StatusBadRequest, `{"error":"missing params"}`},
		{"missing path", "/proxy?session=" + sid, nil, http.StatusBadRequest, `{"error":"missing params"}`},
		{"unknown session", "/proxy?session=never-created&path=/v2/me", nil, http.StatusNotFound, `{"error":"unknown session"}`},
		{"pending session", "/proxy?path=/v2/me", map[string]string{"Session": sid}, http.StatusForbidden, `{"error":"not authorized"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tc.target, tc.headers)
			require.Equal(t, tc.wantCode, rec.Code)
			require.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestSessionResolutionPriority(t *testing.T) {
	f := setupTestFixture(t)

	sid, loginToken := f.newSession(t)
	state := f.login(t, loginToken)
	f.do(t, http.MethodGet, "/callback?code=any-code&state="+state, nil)

	// The bearer-style Authorization header wins over the query param.
	rec := f.do(t, http.MethodGet, "/status?session=never-created", map[string]string{"Authorization": "Session " + sid})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"authorized"}`, rec.Body.String())

	// The Session header wins over the query param too.
	rec = f.do(t, http.MethodGet, "/status?session=never-created", map[string]string{"Session": sid})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"authorized"}`, rec.Body.String())
}

func TestProxyPathWithSubQuery(t *testing.T) {
	f := setupTestFixture(t)

	sid, loginToken := f.newSession(t)
	state := f.login(t, loginToken)
	f.do(t, http.MethodGet, "/callback?code=any-code&state="+state, nil)

	// A path carrying its own query survives verbatim.
	target := "/proxy?session=" + sid + "&path=" + url.QueryEscape("/v2/me?filter=login")
	rec := f.do(t, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewSessionTokensAreUnique(t *testing.T) {
	f := setupTestFixture(t)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		_, token := f.newSession(t)
		require.False(t, seen[token])
		require.NotContains(t, token, "/")
		seen[token] = true
	}
}
