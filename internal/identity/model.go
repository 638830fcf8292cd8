package identity

import (
	"errors"
	"time"
)

var (
	// ErrDuplicateUsername is returned when registering a username that already exists.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput reports a registration request that fails validation.
	ErrInvalidInput = errors.New("invalid registration")
	// ErrNotFound is returned by lookups for an unknown username or identifier.
	ErrNotFound = errors.New("user not found")
)

// User is a stored credential record. It is immutable once created.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Credentials request structure.
type Credentials struct {
	Username string
	Password string
}
