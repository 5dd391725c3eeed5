package sessions

import (
	"context"
	"time"
)

// Repo is the durable session keyspace. The broker re-reads the
// persisted record on every operation; implementations only need
// atomic-replace semantics on Upsert, not read-modify-write isolation.
type Repo interface {
	Upsert(ctx context.Context, sessionID string, session *Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error

	// All returns every live session keyed by id. Used only by the
	// callback state-matching scan and the sweeper; O(live sessions).
	All(ctx context.Context) (map[string]*Session, error)

	// Touch refreshes the record's last-modified time, keeping it alive
	// against the retention sweep.
	Touch(ctx context.Context, sessionID string) error

	// DeleteOlderThan removes sessions untouched since cutoff. Backends
	// with native per-key expiry may implement it as a no-op.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}
