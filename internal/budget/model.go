package budget

import (
	"errors"
	"maps"
	"time"
)

var (
	// ErrNotFound is returned when no budget exists for an identifier.
	ErrNotFound = errors.New("budget not found")
	// ErrBadCommand reports a malformed command or one whose precondition fails.
	ErrBadCommand = errors.New("bad command")
)

// State is a user's budget. Amounts are in minor currency units (cents).
// ExpectedExpenses and CurrentExpenses always share the same label set.
type State struct {
	Username         string           `json:"username"`
	ExpectedIncome   int64            `json:"expected_income"`
	CurrentBalance   int64            `json:"current_balance"`
	Savings          int64            `json:"savings"`
	ExpectedExpenses map[string]int64 `json:"expected_expenses"`
	CurrentExpenses  map[string]int64 `json:"current_expenses"`
}

// NewState returns the zero-valued budget for username.
func NewState(username string) State {
	return State{
		Username:         username,
		ExpectedExpenses: map[string]int64{},
		CurrentExpenses:  map[string]int64{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.ExpectedExpenses = maps.Clone(s.ExpectedExpenses)
	out.CurrentExpenses = maps.Clone(s.CurrentExpenses)
	out.normalize()
	return out
}

// normalize replaces nil maps so the state always encodes as {} rather than null.
func (s *State) normalize() {
	if s.ExpectedExpenses == nil {
		s.ExpectedExpenses = map[string]int64{}
	}
	if s.CurrentExpenses == nil {
		s.CurrentExpenses = map[string]int64{}
	}
}

// Entry is one applied command in a user's history.
type Entry struct {
	Command      string    `json:"command"`
	Label        string    `json:"label,omitempty"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}
