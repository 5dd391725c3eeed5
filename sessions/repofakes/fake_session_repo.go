package repofakes

import (
	"context"
	"sync"
	"time"

	"github.com/quackd/quack/internal/errors"
	"github.com/quackd/quack/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	lock     sync.RWMutex
	sessions map[string]*sessions.Session
	modTimes map[string]time.Time
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
		modTimes: make(map[string]time.Time),
	}
}

func (r *FakeSessionRepo) Upsert(_ context.Context, sessionID string, session *sessions.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	copied := *session
	r.sessions[sessionID] = &copied
	r.modTimes[sessionID] = time.Now()
	return nil
}

func (r *FakeSessionRepo) Get(_ context.Context, sessionID string) (*sessions.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.ErrUnknownSession
	}
	copied := *session
	return &copied, nil
}

func (r *FakeSessionRepo) Delete(_ context.Context, sessionID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.sessions, sessionID)
	delete(r.modTimes, sessionID)
	return nil
}

func (r *FakeSessionRepo) All(_ context.Context) (map[string]*sessions.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	all := make(map[string]*sessions.Session, len(r.sessions))
	for id, session := range r.sessions {
		copied := *session
		all[id] = &copied
	}
	return all, nil
}

func (r *FakeSessionRepo) Touch(_ context.Context, sessionID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return errors.ErrUnknownSession
	}
	r.modTimes[sessionID] = time.Now()
	return nil
}

func (r *FakeSessionRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for id, modTime := range r.modTimes {
		if modTime.Before(cutoff) {
			delete(r.sessions, id)
			delete(r.modTimes, id)
		}
	}
	return nil
}

// SetModTime backdates a record's last-modified time for sweep tests.
func (r *FakeSessionRepo) SetModTime(sessionID string, t time.Time) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.modTimes[sessionID] = t
}
