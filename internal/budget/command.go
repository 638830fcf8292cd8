package budget

import (
	"fmt"
	"math"
	"strings"
)

// Command names understood by Apply.
const (
	CommandNew         = "new"
	CommandPay         = "pay"
	CommandGetPaid     = "getpaid"
	CommandSetIncome   = "setincome"
	CommandRaiseIncome = "raiseincome"
	CommandSave        = "save"
	CommandSaveAll     = "saveall"
)

// Command is a single budget operation as sent by the client.
type Command struct {
	Name   string  `json:"command"`
	Label  string  `json:"label,omitempty"`
	Amount *Amount `json:"amount,omitempty"`
}

// Apply checks every precondition of c against st and only then mutates st.
// On error st is left untouched. The returned Entry describes the change;
// its CreatedAt is filled in by the store.
func (c Command) Apply(st *State) (Entry, error) {
	st.normalize()

	name := strings.ToLower(strings.TrimSpace(c.Name))
	entry := Entry{Command: name}

	switch name {
	case CommandNew:
		label, err := c.label()
		if err != nil {
			return Entry{}, err
		}
		amount, err := c.amount(false)
		if err != nil {
			return Entry{}, err
		}
		if _, exists := st.ExpectedExpenses[label]; exists {
			return Entry{}, badCommand("expense %q already exists", label)
		}
		st.ExpectedExpenses[label] = amount
		st.CurrentExpenses[label] = 0
		entry.Label, entry.Amount = label, amount

	case CommandPay:
		label, err := c.label()
		if err != nil {
			return Entry{}, err
		}
		expected, exists := st.ExpectedExpenses[label]
		if !exists {
			return Entry{}, badCommand("expense %q not found", label)
		}
		current := st.CurrentExpenses[label]
		remaining := expected - current

		amount := remaining
		if c.Amount != nil {
			if amount, err = c.amount(true); err != nil {
				return Entry{}, err
			}
		}
		if remaining <= 0 {
			return Entry{}, badCommand("expense %q is already paid", label)
		}
		if amount > remaining {
			return Entry{}, badCommand("payment of %d exceeds the %d remaining on %q", amount, remaining, label)
		}
		st.CurrentExpenses[label] = current + amount
		entry.Label, entry.Amount = label, amount

	case CommandGetPaid:
		amount := st.ExpectedIncome
		if c.Amount != nil {
			var err error
			if amount, err = c.amount(true); err != nil {
				return Entry{}, err
			}
		}
		balance, ok := add(st.CurrentBalance, amount)
		if !ok {
			return Entry{}, badCommand("balance would overflow")
		}
		st.CurrentBalance = balance
		entry.Amount = amount

	case CommandSetIncome:
		if c.Amount == nil {
			return Entry{}, badCommand("%s requires an amount", name)
		}
		amount, err := c.amount(false)
		if err != nil {
			return Entry{}, err
		}
		st.ExpectedIncome = amount
		entry.Amount = amount

	case CommandRaiseIncome:
		if c.Amount == nil {
			return Entry{}, badCommand("%s requires an amount", name)
		}
		amount, err := c.amount(true)
		if err != nil {
			return Entry{}, err
		}
		income, ok := add(st.ExpectedIncome, amount)
		if !ok {
			return Entry{}, badCommand("income would overflow")
		}
		st.ExpectedIncome = income
		entry.Amount = amount

	case CommandSave:
		if c.Amount == nil {
			return Entry{}, badCommand("%s requires an amount", name)
		}
		amount, err := c.amount(true)
		if err != nil {
			return Entry{}, err
		}
		if err := moveToSavings(st, amount); err != nil {
			return Entry{}, err
		}
		entry.Amount = amount

	case CommandSaveAll:
		amount := st.CurrentBalance
		if amount <= 0 {
			return Entry{}, badCommand("nothing in balance to save")
		}
		if err := moveToSavings(st, amount); err != nil {
			return Entry{}, err
		}
		entry.Amount = amount

	case "":
		return Entry{}, badCommand("command is required")

	default:
		return Entry{}, badCommand("unknown command %q", c.Name)
	}

	entry.BalanceAfter = st.CurrentBalance
	return entry, nil
}

func moveToSavings(st *State, amount int64) error {
	if st.CurrentBalance < amount {
		return badCommand("not enough in balance to save %d", amount)
	}
	savings, ok := add(st.Savings, amount)
	if !ok {
		return badCommand("savings would overflow")
	}
	st.CurrentBalance -= amount
	st.Savings = savings
	return nil
}

// label returns the normalized expense label; labels are case-insensitive.
func (c Command) label() (string, error) {
	label := strings.ToLower(strings.TrimSpace(c.Label))
	if label == "" {
		return "", badCommand("label is required")
	}
	return label, nil
}

// amount returns the command amount, requiring it to be present. With
// positive set the amount must be greater than zero, otherwise non-negative.
func (c Command) amount(positive bool) (int64, error) {
	if c.Amount == nil {
		return 0, badCommand("amount is required")
	}
	v := int64(*c.Amount)
	switch {
	case positive && v <= 0:
		return 0, badCommand("amount must be positive")
	case v < 0:
		return 0, badCommand("amount must not be negative")
	}
	return v, nil
}

func add(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

func badCommand(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadCommand, fmt.Sprintf(format, args...))
}
