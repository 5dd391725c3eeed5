// Package filerepo stores redirect-token records as JSON files in the
// same keyspace as sessions, under their own prefix so the two entity
// kinds sweep on distinct schedules.
package filerepo

import (
	"context"
	"time"

	"github.com/quackd/quack/internal/filestore"
	"github.com/quackd/quack/redirecttokens"
)

const keyPrefix = "token_"

var _ redirecttokens.Repo = (*Repo)(nil)

type Repo struct {
	store *filestore.Store
}

func New(store *filestore.Store) *Repo {
	return &Repo{store: store}
}

func (r *Repo) Put(_ context.Context, token string, record *redirecttokens.RedirectToken) error {
	return r.store.Put(keyPrefix+token, record)
}

func (r *Repo) Take(_ context.Context, token string) (*redirecttokens.RedirectToken, error) {
	var record redirecttokens.RedirectToken
	err := r.store.Get(keyPrefix+token, &record)
	// One-time use: drop the record before the caller sees the outcome.
	_ = r.store.Delete(keyPrefix + token)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repo) DeleteOlderThan(_ context.Context, cutoff time.Time) error {
	return r.store.SweepOlderThan(keyPrefix, cutoff)
}
