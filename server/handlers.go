package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/quackd/quack/internal/errors"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// NewSessionHandler creates a pending session for the CLI. The private
// session id travels back in the Session response header only; the
// JSON body carries the browser login URL with the one-time token.
func (s *Server) NewSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, loginURL, err := s.broker.NewSession(r.Context())
		if err != nil {
			log.Err(err).Msg("Failed to create session")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
			return
		}
		w.Header().Set(sessionHeader, sid)
		writeJSON(w, http.StatusOK, map[string]string{"login_url": loginURL})
	}
}

// LoginHandler redirects the browser to the provider authorize
// endpoint. The session is resolved from the trusted Session header
// (direct CLI call) or the one-time token in the query (browser).
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(sessionHeader)
		token := r.URL.Query().Get("token")

		authURL, err := s.broker.BeginLogin(r.Context(), sid, token)
		switch {
		case errors.Is(err, errors.ErrMissingOrInvalidSession):
			writePlain(w, http.StatusBadRequest, "Missing or invalid session token.")
			return
		case errors.Is(err, errors.ErrUnknownSession):
			writePlain(w, http.StatusNotFound, "Unknown or expired session.")
			return
		case err != nil:
			log.Err(err).Msg("Failed to begin login")
			writePlain(w, http.StatusInternalServerError, "Internal error.")
			return
		}

		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

// CallbackHandler completes the authorization-code exchange when the
// provider redirects the browser back.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errorParam := r.URL.Query().Get("error"); errorParam != "" {
			errorDesc := r.URL.Query().Get("error_description")
			writePlain(w, http.StatusBadRequest, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDesc))
			return
		}

		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		err := s.broker.HandleCallback(r.Context(), code, state)
		switch {
		case errors.Is(err, errors.ErrMissingState):
			writePlain(w, http.StatusBadRequest, "Missing state.")
			return
		case errors.Is(err, errors.ErrUnknownState):
			writePlain(w, http.StatusBadRequest, "Unknown or expired state.")
			return
		case errors.Is(err, errors.ErrTokenExchangeFailed):
			writePlain(w, http.StatusBadGateway, "Token exchange failed.")
			return
		case err != nil:
			log.Err(err).Msg("Callback failed")
			writePlain(w, http.StatusInternalServerError, "Internal error.")
			return
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		_, _ = w.Write([]byte(authorizedPage))
	}
}

// StatusHandler reports the session stage to the polling CLI.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage, err := s.broker.Status(r.Context(), sessionFromRequest(r))
		if errors.Is(err, errors.ErrUnknownSession) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown"})
			return
		}
		if err != nil {
			log.Err(err).Msg("Status check failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": string(stage)})
	}
}

// ProxyHandler forwards an API call with the session's bearer token
// and returns the provider's status and body verbatim.
func (s *Server) ProxyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := sessionFromRequest(r)
		path := proxyPath(r)

		resp, err := s.broker.Proxy(r.Context(), sid, path)
		switch {
		case errors.Is(err, errors.ErrMissingParams):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing params"})
			return
		case errors.Is(err, errors.ErrUnknownSession):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown session"})
			return
		case errors.Is(err, errors.ErrNotAuthorized):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "not authorized"})
			return
		case errors.Is(err, errors.ErrSessionExpired):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "session_expired"})
			return
		case err != nil:
			log.Err(err).Str("path", path).Msg("Proxy call failed")
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream failure"})
			return
		}

		contentType := resp.ContentType
		if contentType == "" {
			contentType = contentTypeJSON
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write(resp.Body)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writePlain(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
