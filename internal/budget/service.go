package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// OwnerLookup resolves a user identifier to its username.
type OwnerLookup interface {
	Username(ctx context.Context, userID string) (string, error)
}

// Service applies commands to budgets and serves their current state.
type Service struct {
	store  Store
	owners OwnerLookup
	logger *slog.Logger
}

// NewService builds a budget service. owners is consulted when a budget has
// to be created lazily for a user registered before budgets were provisioned.
func NewService(store Store, owners OwnerLookup, logger *slog.Logger) *Service {
	return &Service{store: store, owners: owners, logger: logger}
}

// Provision creates the zero-valued budget for a newly registered user.
func (s *Service) Provision(ctx context.Context, userID, username string) error {
	if err := s.store.Create(ctx, userID, NewState(username)); err != nil {
		return fmt.Errorf("provision budget: %w", err)
	}
	return nil
}

// Get returns the budget for userID, initialising it when missing.
func (s *Service) Get(ctx context.Context, userID string) (State, error) {
	st, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		if err := s.ensure(ctx, userID); err != nil {
			return State{}, err
		}
		st, err = s.store.Get(ctx, userID)
	}
	if err != nil {
		return State{}, err
	}
	return st, nil
}

// Execute validates and applies cmd to the budget of userID and returns the
// updated state. A rejected command leaves the budget unchanged.
func (s *Service) Execute(ctx context.Context, userID string, cmd Command) (State, error) {
	st, err := s.store.Update(ctx, userID, cmd.Apply)
	if errors.Is(err, ErrNotFound) {
		if err := s.ensure(ctx, userID); err != nil {
			return State{}, err
		}
		st, err = s.store.Update(ctx, userID, cmd.Apply)
	}
	if err != nil {
		return State{}, err
	}

	if s.logger != nil {
		s.logger.Info("budget command applied",
			slog.String("user_id", userID),
			slog.String("command", cmd.Name),
			slog.Int64("balance", st.CurrentBalance),
		)
	}
	return st, nil
}

// History lists the most recent commands applied to the budget of userID.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]Entry, error) {
	return s.store.History(ctx, userID, limit)
}

func (s *Service) ensure(ctx context.Context, userID string) error {
	if s.owners == nil {
		return ErrNotFound
	}
	username, err := s.owners.Username(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve owner: %w", err)
	}
	return s.Provision(ctx, userID, username)
}
