package repofakes

import (
	"context"
	"sync"
	"time"

	"github.com/quackd/quack/internal/errors"
	"github.com/quackd/quack/redirecttokens"
)

var _ redirecttokens.Repo = (*FakeTokenRepo)(nil)

type FakeTokenRepo struct {
	lock    sync.Mutex
	records map[string]*redirecttokens.RedirectToken
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		records: make(map[string]*redirecttokens.RedirectToken),
	}
}

func (r *FakeTokenRepo) Put(_ context.Context, token string, record *redirecttokens.RedirectToken) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	copied := *record
	r.records[token] = &copied
	return nil
}

func (r *FakeTokenRepo) Take(_ context.Context, token string) (*redirecttokens.RedirectToken, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	record, ok := r.records[token]
	delete(r.records, token)
	if !ok {
		return nil, errors.ErrNotFound
	}
	return record, nil
}

func (r *FakeTokenRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for token, record := range r.records {
		if time.Unix(record.Expires, 0).Before(cutoff) {
			delete(r.records, token)
		}
	}
	return nil
}

// Len reports the number of outstanding token records.
func (r *FakeTokenRepo) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.records)
}
