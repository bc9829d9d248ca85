// Package redisstore keeps sessions in Redis, so they survive restarts and are shared between instances.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/user"
)

const keyPrefix = "campus:session:"

// NewClient connects to the Redis server configured for sessions, with short timeouts.
func NewClient(conf *core.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         conf.Session.RedisAddr,
		Password:     conf.Session.RedisPassword,
		DB:           conf.Session.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// Healthy verifies redis connectivity.
func Healthy(ctx context.Context, client *redis.Client) bool {
	return client != nil && client.Ping(ctx).Err() == nil
}

type sessionStore struct {
	client *redis.Client
	now    func() time.Time
}

var _ user.SessionStore = (*sessionStore)(nil)

func NewSessionStore(client *redis.Client) user.SessionStore {
	return &sessionStore{client: client, now: time.Now}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

func (store *sessionStore) CreateSession(ctx context.Context, s user.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}

	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		if ttl = s.ExpiresAt.Sub(store.now()); ttl <= 0 {
			return nil
		}
	}
	return errors.Wrap(store.client.Set(ctx, sessionKey(s.ID), data, ttl).Err(), "storing session")
}

func (store *sessionStore) GetSession(ctx context.Context, id string) (user.Session, error) {
	data, err := store.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return user.Session{}, user.ErrSessionNotFound
	}
	if err != nil {
		return user.Session{}, errors.Wrap(err, "getting session")
	}

	var s user.Session
	if err = json.Unmarshal(data, &s); err != nil {
		return user.Session{}, errors.Wrap(err, "decoding session")
	}
	if s.Expired(store.now()) {
		return user.Session{}, user.ErrSessionNotFound
	}
	return s, nil
}

func (store *sessionStore) DeleteSession(ctx context.Context, id string) error {
	return errors.Wrap(store.client.Del(ctx, sessionKey(id)).Err(), "deleting session")
}
