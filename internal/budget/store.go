package budget

import "context"

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// MutateFunc changes a state in place and describes the change. Returning an
// error aborts the update without persisting anything.
type MutateFunc func(*State) (Entry, error)

// Store persists one budget per user identifier.
type Store interface {
	// Create stores st for userID unless a budget already exists.
	Create(ctx context.Context, userID string, st State) error
	Get(ctx context.Context, userID string) (State, error)
	// Put atomically replaces the budget for userID.
	Put(ctx context.Context, userID string, st State) error
	// Update runs fn on the current budget and persists the result together
	// with its history entry as one atomic read-modify-write.
	Update(ctx context.Context, userID string, fn MutateFunc) (State, error)
	// History returns the newest entries first.
	History(ctx context.Context, userID string, limit int) ([]Entry, error)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	}
	return limit
}
