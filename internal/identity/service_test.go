package identity

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), bcrypt.MinCost)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, Credentials{Username: "alice", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if string(user.PasswordHash) == "correct horse" {
		t.Fatalf("password stored in clear")
	}

	authed, err := svc.Authenticate(ctx, Credentials{Username: "alice", Password: "correct horse"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected id %s, got %s", user.ID, authed.ID)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Username: "bob", Password: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, pw := range []string{"password2", "", "PASSWORD1"} {
		if _, err := svc.Authenticate(ctx, Credentials{Username: "bob", Password: pw}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("password %q: expected ErrInvalidCredentials, got %v", pw, err)
		}
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Authenticate(context.Background(), Credentials{Username: "ghost", Password: "whatever1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestNewServiceDummyHashMatchesCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, 0, bcrypt.MaxCost + 1} {
		svc := NewService(NewMemoryRepository(), cost)
		if len(svc.dummyHash) == 0 {
			t.Fatalf("cost %d: dummy hash missing", cost)
		}
		got, err := bcrypt.Cost(svc.dummyHash)
		if err != nil {
			t.Fatalf("cost %d: dummy hash unreadable: %v", cost, err)
		}
		if got != svc.cost {
			t.Fatalf("cost %d: dummy hash cost %d, service cost %d", cost, got, svc.cost)
		}
	}
}

func TestRegisterDuplicateLeavesStoreUnchanged(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, Credentials{Username: "carol", Password: "first-password"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Register(ctx, Credentials{Username: "carol", Password: "second-password"}); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	stored, err := svc.Lookup(ctx, "carol")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.ID != first.ID {
		t.Fatalf("record replaced: expected id %s, got %s", first.ID, stored.ID)
	}
	if _, err := svc.Authenticate(ctx, Credentials{Username: "carol", Password: "first-password"}); err != nil {
		t.Fatalf("original password should still work: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []Credentials{
		{Username: "  ", Password: "password1"},
		{Username: "dave", Password: "short"},
		{Username: "dave", Password: string(make([]byte, 73))},
	}
	for _, creds := range cases {
		if _, err := svc.Register(ctx, creds); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", creds.Username, err)
		}
	}
}

func TestLookupAndUsername(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Lookup(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	user, err := svc.Register(ctx, Credentials{Username: " erin ", Password: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "erin" {
		t.Fatalf("expected trimmed username, got %q", user.Username)
	}

	name, err := svc.Username(ctx, user.ID)
	if err != nil {
		t.Fatalf("username: %v", err)
	}
	if name != "erin" {
		t.Fatalf("expected erin, got %q", name)
	}
}
