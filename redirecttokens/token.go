// Package redirecttokens mints one-time, short-lived public tokens
// that resolve to a private session identifier. They make the browser
// login link safe: the session id itself never appears in a URL.
package redirecttokens

import "time"

// RedirectToken binds a minted token value to the session it resolves
// to. Expires is absolute; the record is consumed on first lookup
// whether or not it is still valid.
type RedirectToken struct {
	SID     string `json:"sid"`
	Expires int64  `json:"expires"`
}

func (t *RedirectToken) Expired(now time.Time) bool {
	return now.Unix() >= t.Expires
}
