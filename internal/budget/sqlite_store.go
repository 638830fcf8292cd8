package budget

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore keeps budgets in SQLite. Expense maps are stored as JSON text.
// Atomicity of Update relies on the database handle being limited to one
// connection (see infra.NewSQLite), which serializes write transactions.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore builds a SQLite-backed budget store on a migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Create inserts a budget unless one exists for userID.
func (s *SQLiteStore) Create(ctx context.Context, userID string, st State) error {
	expected, current, err := encodeExpenses(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO budgets
        (user_id, username, expected_income, current_balance, savings, expected_expenses, current_expenses, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (user_id) DO NOTHING`,
		userID, st.Username, st.ExpectedIncome, st.CurrentBalance, st.Savings, expected, current, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

// Get loads the budget for userID.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (State, error) {
	return loadSQLiteState(ctx, s.db, userID)
}

// Put replaces the budget for userID, inserting it when missing.
func (s *SQLiteStore) Put(ctx context.Context, userID string, st State) error {
	if err := upsertSQLiteState(ctx, s.db, userID, st); err != nil {
		return fmt.Errorf("put budget: %w", err)
	}
	return nil
}

// Update performs fn inside a transaction and records the history entry.
func (s *SQLiteStore) Update(ctx context.Context, userID string, fn MutateFunc) (State, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return State{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	st, err := loadSQLiteState(ctx, tx, userID)
	if err != nil {
		return State{}, err
	}

	entry, err := fn(&st)
	if err != nil {
		return State{}, err
	}

	if err := upsertSQLiteState(ctx, tx, userID, st); err != nil {
		return State{}, fmt.Errorf("write budget: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO budget_history (user_id, command, label, amount, balance_after, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`, userID, entry.Command, entry.Label, entry.Amount, entry.BalanceAfter, time.Now().UTC()); err != nil {
		return State{}, fmt.Errorf("write history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return State{}, fmt.Errorf("commit: %w", err)
	}
	return st, nil
}

// History returns up to limit entries for userID, newest first.
func (s *SQLiteStore) History(ctx context.Context, userID string, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT command, label, amount, balance_after, created_at
        FROM budget_history WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Command, &e.Label, &e.Amount, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func loadSQLiteState(ctx context.Context, q sqlQuerier, userID string) (State, error) {
	var (
		st                State
		expected, current string
	)
	err := q.QueryRowContext(ctx, `SELECT username, expected_income, current_balance, savings, expected_expenses, current_expenses
        FROM budgets WHERE user_id = ?`, userID).
		Scan(&st.Username, &st.ExpectedIncome, &st.CurrentBalance, &st.Savings, &expected, &current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{}, ErrNotFound
		}
		return State{}, fmt.Errorf("select budget: %w", err)
	}
	if err := json.Unmarshal([]byte(expected), &st.ExpectedExpenses); err != nil {
		return State{}, fmt.Errorf("decode expected expenses: %w", err)
	}
	if err := json.Unmarshal([]byte(current), &st.CurrentExpenses); err != nil {
		return State{}, fmt.Errorf("decode current expenses: %w", err)
	}
	st.normalize()
	return st, nil
}

func upsertSQLiteState(ctx context.Context, q sqlQuerier, userID string, st State) error {
	expected, current, err := encodeExpenses(st)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `INSERT INTO budgets
        (user_id, username, expected_income, current_balance, savings, expected_expenses, current_expenses, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE SET
            username = excluded.username,
            expected_income = excluded.expected_income,
            current_balance = excluded.current_balance,
            savings = excluded.savings,
            expected_expenses = excluded.expected_expenses,
            current_expenses = excluded.current_expenses,
            updated_at = excluded.updated_at`,
		userID, st.Username, st.ExpectedIncome, st.CurrentBalance, st.Savings, expected, current, time.Now().UTC())
	return err
}

func encodeExpenses(st State) (string, string, error) {
	st.normalize()
	expected, err := json.Marshal(st.ExpectedExpenses)
	if err != nil {
		return "", "", fmt.Errorf("encode expected expenses: %w", err)
	}
	current, err := json.Marshal(st.CurrentExpenses)
	if err != nil {
		return "", "", fmt.Errorf("encode current expenses: %w", err)
	}
	return string(expected), string(current), nil
}
