package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnauthenticated is returned when a session credential is missing, forged, expired or revoked.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSessionNotFound is returned by session stores for an unknown or expired session.
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the server-side record behind a bearer token.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists sessions until they expire or are deleted.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Find(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
