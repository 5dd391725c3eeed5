// Package redisrepo stores redirect-token records in Redis with a TTL
// equal to the validity window; Take consumes them atomically via
// GETDEL.
package redisrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quackd/quack/internal/errors"
	"github.com/quackd/quack/redirecttokens"
)

const keyPrefix = "redirect:"

var _ redirecttokens.Repo = (*Repo)(nil)

type Repo struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Repo {
	return &Repo{client: client, ttl: ttl}
}

func (r *Repo) Put(ctx context.Context, token string, record *redirecttokens.RedirectToken) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrapf(err, "redisrepo.Put marshal")
	}
	if err := r.client.Set(ctx, keyPrefix+token, data, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redisrepo.Put set")
	}
	return nil
}

func (r *Repo) Take(ctx context.Context, token string) (*redirecttokens.RedirectToken, error) {
	data, err := r.client.GetDel(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redisrepo.Take")
	}
	var record redirecttokens.RedirectToken
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(err, "redisrepo.Take unmarshal")
	}
	return &record, nil
}

// DeleteOlderThan is a no-op: the per-key TTL set on Put already
// enforces the validity window.
func (r *Repo) DeleteOlderThan(context.Context, time.Time) error {
	return nil
}
