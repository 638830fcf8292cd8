package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes; longer passwords are refused instead of truncated.
	maxPasswordLength = 72
)

// Service manages the credential lifecycle: registration, lookup and authentication.
type Service struct {
	repo      Repository
	cost      int
	dummyHash []byte
}

// NewService creates a new identity service hashing with the given bcrypt
// cost. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewService(repo Repository, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Compared against for unknown usernames so both failure paths pay for a hash.
	dummy, err := bcrypt.GenerateFromPassword([]byte("budget-dummy-password"), cost)
	if err != nil {
		panic(fmt.Sprintf("identity: generate dummy hash: %v", err))
	}
	return &Service{repo: repo, cost: cost, dummyHash: dummy}
}

// Register validates the credentials, hashes the password and stores a new user.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" {
		return User{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(creds.Password) < minPasswordLength || len(creds.Password) > maxPasswordLength {
		return User{}, fmt.Errorf("%w: password must be %d to %d characters", ErrInvalidInput, minPasswordLength, maxPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return User{}, ErrDuplicateUsername
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Lookup returns the credential record for username.
func (s *Service) Lookup(ctx context.Context, username string) (User, error) {
	return s.repo.FindByUsername(ctx, strings.TrimSpace(username))
}

// Username resolves an identifier to its username.
func (s *Service) Username(ctx context.Context, id string) (string, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(creds.Password))
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}
