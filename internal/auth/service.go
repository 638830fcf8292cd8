package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nos-web/budget/internal/config"
)

// Service issues, validates and revokes session credentials.
type Service struct {
	secret []byte
	ttl    time.Duration
	store  SessionStore
	now    func() time.Time
}

// NewService builds a session issuer signing with cfg.SessionSecret and
// expiring sessions after cfg.SessionTTL.
func NewService(cfg config.Config, store SessionStore) *Service {
	return &Service{secret: []byte(cfg.SessionSecret), ttl: cfg.SessionTTL, store: store, now: time.Now}
}

// Token is the bearer credential handed to the client.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue creates a session bound to userID and returns its signed token.
func (s *Service) Issue(ctx context.Context, userID string) (Token, error) {
	if userID == "" {
		return Token{}, errors.New("user id is required")
	}
	now := s.now().UTC().Truncate(time.Second)
	session := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	signed, err := SignToken(session, s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	if err := s.store.Save(ctx, session); err != nil {
		return Token{}, fmt.Errorf("save session: %w", err)
	}
	return Token{Value: signed, ExpiresAt: session.ExpiresAt}, nil
}

// Validate returns the user id bound to a live session token.
func (s *Service) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	claims, err := ParseToken(token, s.secret, false)
	if err != nil {
		return "", ErrUnauthenticated
	}

	session, err := s.store.Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("find session: %w", err)
	}
	if session.UserID != claims.Subject {
		return "", ErrUnauthenticated
	}
	return session.UserID, nil
}

// Revoke deletes the session behind token. Expired or already revoked
// sessions revoke successfully; only forged or malformed tokens fail.
func (s *Service) Revoke(ctx context.Context, token string) error {
	claims, err := ParseToken(token, s.secret, true)
	if err != nil {
		return ErrUnauthenticated
	}
	if err := s.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// BearerToken extracts the credential from an Authorization header value.
// Both "Bearer <token>" and a bare token are accepted.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > len("bearer ") && strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}
	return header
}
