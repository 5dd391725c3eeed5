package server

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	// sessionHeader carries the private session id between CLI and
	// broker. It never appears in URLs or browser-facing responses.
	sessionHeader = "Session"

	authorizationScheme = "Session "
)

// sessionFromRequest resolves the session credential in priority
// order: bearer-style Authorization header, Session header, query
// parameter.
func sessionFromRequest(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, authorizationScheme) {
		return strings.TrimPrefix(authz, authorizationScheme)
	}
	if sid := r.Header.Get(sessionHeader); sid != "" {
		return sid
	}
	return r.URL.Query().Get("session")
}

// proxyPath extracts the downstream API path. A path carrying its own
// sub-query ("&path=/v2/users?filter=x") would be split up by normal
// query parsing, so everything after the path marker is taken raw.
func proxyPath(r *http.Request) string {
	path := r.URL.Query().Get("path")
	raw := r.URL.RawQuery
	if idx := strings.Index(raw, "&path="); idx != -1 {
		if unescaped, err := url.QueryUnescape(raw[idx+len("&path="):]); err == nil {
			path = unescaped
		}
	}
	return path
}
