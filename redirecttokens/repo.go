package redirecttokens

import (
	"context"
	"time"
)

// Repo is the redirect-token keyspace.
type Repo interface {
	Put(ctx context.Context, token string, record *RedirectToken) error

	// Take returns the record stored under token and deletes it in the
	// same operation, whatever the outcome of the caller's validity
	// check. Returns ErrNotFound when no record exists.
	Take(ctx context.Context, token string) (*RedirectToken, error)

	// DeleteOlderThan removes token records created before cutoff.
	// Backends with native per-key expiry may implement it as a no-op.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}
