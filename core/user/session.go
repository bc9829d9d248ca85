package user

import (
	"context"
	"time"
)

// Session ties an issued token to the User who logged in.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type SessionStore interface {
	CreateSession(ctx context.Context, s Session) error
	// GetSession returns ErrSessionNotFound for unknown or expired sessions.
	GetSession(ctx context.Context, id string) (Session, error)
	DeleteSession(ctx context.Context, id string) error
}
