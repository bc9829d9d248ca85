package inmemdb

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/campus/core/user"
)

type sessionStore struct {
	sessions map[string]user.Session
	mutex    sync.Mutex
	now      func() time.Time
}

// NewSessionStore keeps sessions in process memory; they are lost on restart.
func NewSessionStore() user.SessionStore {
	return &sessionStore{
		sessions: make(map[string]user.Session),
		now:      time.Now,
	}
}

func (store *sessionStore) CreateSession(_ context.Context, s user.Session) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.sessions[s.ID] = s
	return nil
}

func (store *sessionStore) GetSession(_ context.Context, id string) (user.Session, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	s, ok := store.sessions[id]
	if !ok {
		return user.Session{}, user.ErrSessionNotFound
	}
	if s.Expired(store.now()) {
		delete(store.sessions, id)
		return user.Session{}, user.ErrSessionNotFound
	}
	return s, nil
}

func (store *sessionStore) DeleteSession(_ context.Context, id string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.sessions, id)
	return nil
}
