// Package filerepo stores session records as JSON files, one per
// session, using atomic-replace writes.
package filerepo

import (
	"context"
	"time"

	"github.com/quackd/quack/internal/errors"
	"github.com/quackd/quack/internal/filestore"
	"github.com/quackd/quack/sessions"
)

const keyPrefix = "session_"

var _ sessions.Repo = (*Repo)(nil)

type Repo struct {
	store *filestore.Store
}

func New(store *filestore.Store) *Repo {
	return &Repo{store: store}
}

func (r *Repo) Upsert(_ context.Context, sessionID string, session *sessions.Session) error {
	return r.store.Put(keyPrefix+sessionID, session)
}

func (r *Repo) Get(_ context.Context, sessionID string) (*sessions.Session, error) {
	var session sessions.Session
	if err := r.store.Get(keyPrefix+sessionID, &session); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.ErrUnknownSession
		}
		return nil, err
	}
	return &session, nil
}

func (r *Repo) Delete(_ context.Context, sessionID string) error {
	return r.store.Delete(keyPrefix + sessionID)
}

func (r *Repo) All(_ context.Context) (map[string]*sessions.Session, error) {
	names, err := r.store.Names(keyPrefix)
	if err != nil {
		return nil, err
	}
	all := make(map[string]*sessions.Session, len(names))
	for _, name := range names {
		var session sessions.Session
		if err := r.store.Get(name, &session); err != nil {
			// Deleted mid-scan, skip.
			continue
		}
		all[name[len(keyPrefix):]] = &session
	}
	return all, nil
}

func (r *Repo) Touch(_ context.Context, sessionID string) error {
	if err := r.store.Touch(keyPrefix + sessionID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.ErrUnknownSession
		}
		return err
	}
	return nil
}

func (r *Repo) DeleteOlderThan(_ context.Context, cutoff time.Time) error {
	return r.store.SweepOlderThan(keyPrefix, cutoff)
}
