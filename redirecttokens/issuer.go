package redirecttokens

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/quackd/quack/internal/errors"
)

// Issuer mints redirect tokens and resolves them back to session ids,
// enforcing single use and the validity window.
type Issuer struct {
	repo Repo
	ttl  time.Duration
}

func NewIssuer(repo Repo, ttl time.Duration) *Issuer {
	return &Issuer{repo: repo, ttl: ttl}
}

// Issue mints a random token bound to sid and stores it with the
// configured validity window. Only the token is returned, never the
// session id.
func (i *Issuer) Issue(ctx context.Context, sid string) (string, error) {
	token := randomToken()
	record := &RedirectToken{
		SID:     sid,
		Expires: time.Now().Add(i.ttl).Unix(),
	}
	if err := i.repo.Put(ctx, token, record); err != nil {
		return "", errors.Wrapf(err, "redirecttokens.Issue")
	}
	return token, nil
}

// Resolve consumes the token and returns the bound session id. The
// stored record is deleted on lookup regardless of validity, so a
// token is usable at most once even inside its window. Returns
// ErrNotFound for absent, already-consumed or expired tokens.
func (i *Issuer) Resolve(ctx context.Context, token string) (string, error) {
	record, err := i.repo.Take(ctx, token)
	if err != nil {
		return "", err
	}
	if record.Expired(time.Now()) {
		return "", errors.ErrNotFound
	}
	return record.SID, nil
}

func randomToken() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
