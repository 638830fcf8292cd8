package budget

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func amt(v int64) *Amount {
	a := Amount(v)
	return &a
}

func apply(t *testing.T, st *State, cmd Command) {
	t.Helper()
	if _, err := cmd.Apply(st); err != nil {
		t.Fatalf("%s: %v", cmd.Name, err)
	}
}

func TestPayUntilSettled(t *testing.T) {
	st := NewState("alice")
	apply(t, &st, Command{Name: CommandNew, Label: "rent", Amount: amt(100_000)})
	apply(t, &st, Command{Name: CommandPay, Label: "rent", Amount: amt(50_000)})
	apply(t, &st, Command{Name: CommandPay, Label: "rent", Amount: amt(50_000)})

	if got := st.CurrentExpenses["rent"]; got != 100_000 {
		t.Fatalf("expected rent fully paid, got %d", got)
	}

	// Overpayment is rejected rather than capped.
	before := st.Clone()
	if _, err := (Command{Name: CommandPay, Label: "rent", Amount: amt(1)}).Apply(&st); !errors.Is(err, ErrBadCommand) {
		t.Fatalf("expected ErrBadCommand for overpayment, got %v", err)
	}
	if !reflect.DeepEqual(before, st) {
		t.Fatalf("state changed by rejected payment: %+v", st)
	}
}

func TestPayWithoutAmountPaysRemainder(t *testing.T) {
	st := NewState("alice")
	apply(t, &st, Command{Name: CommandNew, Label: "Phone", Amount: amt(4_000)})
	apply(t, &st, Command{Name: CommandPay, Label: "phone", Amount: amt(1_500)})

	entry, err := Command{Name: CommandPay, Label: "PHONE"}.Apply(&st)
	if err != nil {
		t.Fatalf("pay remainder: %v", err)
	}
	if entry.Amount != 2_500 || st.CurrentExpenses["phone"] != 4_000 {
		t.Fatalf("unexpected entry %+v state %+v", entry, st)
	}

	if _, err := (Command{Name: CommandPay, Label: "phone"}).Apply(&st); !errors.Is(err, ErrBadCommand) {
		t.Fatalf("expected already paid error, got %v", err)
	}
}

func TestSetIncomeThenGetPaid(t *testing.T) {
	st := NewState("alice")
	st.CurrentBalance = 1_234
	apply(t, &st, Command{Name: CommandSetIncome, Amount: amt(500_000)})
	apply(t, &st, Command{Name: CommandGetPaid})

	if st.CurrentBalance != 1_234+500_000 {
		t.Fatalf("expected balance to grow by exactly 500000, got %d", st.CurrentBalance)
	}

	apply(t, &st, Command{Name: CommandGetPaid, Amount: amt(66)})
	if st.CurrentBalance != 501_300 {
		t.Fatalf("expected explicit amount added, got %d", st.CurrentBalance)
	}
}

func TestRaiseIncome(t *testing.T) {
	st := NewState("alice")
	apply(t, &st, Command{Name: CommandSetIncome, Amount: amt(1_000)})
	apply(t, &st, Command{Name: CommandRaiseIncome, Amount: amt(250)})
	if st.ExpectedIncome != 1_250 {
		t.Fatalf("expected income 1250, got %d", st.ExpectedIncome)
	}
}

func TestSaveMovesBalance(t *testing.T) {
	st := NewState("alice")
	st.CurrentBalance = 10_000

	apply(t, &st, Command{Name: CommandSave, Amount: amt(4_000)})
	if st.CurrentBalance != 6_000 || st.Savings != 4_000 {
		t.Fatalf("unexpected state after save: %+v", st)
	}

	before := st.Clone()
	if _, err := (Command{Name: CommandSave, Amount: amt(6_001)}).Apply(&st); !errors.Is(err, ErrBadCommand) {
		t.Fatalf("expected ErrBadCommand, got %v", err)
	}
	if !reflect.DeepEqual(before, st) {
		t.Fatalf("failed save changed state: %+v", st)
	}

	apply(t, &st, Command{Name: CommandSaveAll})
	if st.CurrentBalance != 0 || st.Savings != 10_000 {
		t.Fatalf("unexpected state after saveall: %+v", st)
	}
	if _, err := (Command{Name: CommandSaveAll}).Apply(&st); !errors.Is(err, ErrBadCommand) {
		t.Fatalf("expected saveall on empty balance to fail, got %v", err)
	}
}

func TestRejectedCommandsLeaveStateUnchanged(t *testing.T) {
	base := NewState("alice")
	base.ExpectedIncome = 100
	base.CurrentBalance = math.MaxInt64 - 10
	base.ExpectedExpenses["rent"] = 500
	base.CurrentExpenses["rent"] = 0

	tests := []struct {
		name string
		cmd  Command
	}{
		{"empty command", Command{}},
		{"unknown command", Command{Name: "withdraw", Amount: amt(10)}},
		{"new without label", Command{Name: CommandNew, Amount: amt(10)}},
		{"new without amount", Command{Name: CommandNew, Label: "food"}},
		{"new negative", Command{Name: CommandNew, Label: "food", Amount: amt(-1)}},
		{"new duplicate", Command{Name: CommandNew, Label: " RENT ", Amount: amt(10)}},
		{"pay unknown label", Command{Name: CommandPay, Label: "food", Amount: amt(10)}},
		{"pay zero", Command{Name: CommandPay, Label: "rent", Amount: amt(0)}},
		{"pay over expected", Command{Name: CommandPay, Label: "rent", Amount: amt(501)}},
		{"getpaid negative", Command{Name: CommandGetPaid, Amount: amt(-5)}},
		{"getpaid overflow", Command{Name: CommandGetPaid, Amount: amt(11)}},
		{"setincome missing", Command{Name: CommandSetIncome}},
		{"setincome negative", Command{Name: CommandSetIncome, Amount: amt(-1)}},
		{"raiseincome missing", Command{Name: CommandRaiseIncome}},
		{"raiseincome zero", Command{Name: CommandRaiseIncome, Amount: amt(0)}},
		{"save missing", Command{Name: CommandSave}},
		{"save zero", Command{Name: CommandSave, Amount: amt(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := base.Clone()
			if _, err := tt.cmd.Apply(&st); !errors.Is(err, ErrBadCommand) {
				t.Fatalf("expected ErrBadCommand, got %v", err)
			}
			if !reflect.DeepEqual(base, st) {
				t.Fatalf("state mutated: %+v", st)
			}
		})
	}
}

func TestNewKeepsExpenseMapsAligned(t *testing.T) {
	st := NewState("alice")
	for _, label := range []string{"rent", "*Car", "food"} {
		apply(t, &st, Command{Name: CommandNew, Label: label, Amount: amt(100)})
	}
	if len(st.ExpectedExpenses) != len(st.CurrentExpenses) {
		t.Fatalf("maps diverged: %v vs %v", st.ExpectedExpenses, st.CurrentExpenses)
	}
	for label := range st.ExpectedExpenses {
		if _, ok := st.CurrentExpenses[label]; !ok {
			t.Fatalf("label %q missing from current expenses", label)
		}
	}
	if _, ok := st.ExpectedExpenses["*car"]; !ok {
		t.Fatalf("expected labels to be lower-cased, got %v", st.ExpectedExpenses)
	}
}

func TestApplyEntry(t *testing.T) {
	st := NewState("alice")
	st.CurrentBalance = 900
	entry, err := Command{Name: " Save ", Amount: amt(400)}.Apply(&st)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if entry.Command != CommandSave || entry.Amount != 400 || entry.BalanceAfter != 500 {
		t.Fatalf("unexpected entry %+v", entry)
	}
}
