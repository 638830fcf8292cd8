package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists budgets in PostgreSQL with JSONB expense maps.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed budget store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const upsertBudgetQuery = `INSERT INTO budgets
        (user_id, username, expected_income, current_balance, savings, expected_expenses, current_expenses, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (user_id) DO UPDATE SET
            username = EXCLUDED.username,
            expected_income = EXCLUDED.expected_income,
            current_balance = EXCLUDED.current_balance,
            savings = EXCLUDED.savings,
            expected_expenses = EXCLUDED.expected_expenses,
            current_expenses = EXCLUDED.current_expenses,
            updated_at = EXCLUDED.updated_at`

// Create inserts a budget unless one exists for userID.
func (s *PostgresStore) Create(ctx context.Context, userID string, st State) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	st.normalize()
	_, err = s.db.Exec(ctx, `INSERT INTO budgets
        (user_id, username, expected_income, current_balance, savings, expected_expenses, current_expenses, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (user_id) DO NOTHING`,
		id, st.Username, st.ExpectedIncome, st.CurrentBalance, st.Savings, st.ExpectedExpenses, st.CurrentExpenses, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

// Get loads the budget for userID.
func (s *PostgresStore) Get(ctx context.Context, userID string) (State, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return State{}, ErrNotFound
	}
	return scanPostgresState(s.db.QueryRow(ctx, `SELECT username, expected_income, current_balance, savings, expected_expenses, current_expenses
        FROM budgets WHERE user_id = $1`, id))
}

// Put replaces the budget for userID, inserting it when missing.
func (s *PostgresStore) Put(ctx context.Context, userID string, st State) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	st.normalize()
	if _, err := s.db.Exec(ctx, upsertBudgetQuery, id, st.Username, st.ExpectedIncome, st.CurrentBalance, st.Savings,
		st.ExpectedExpenses, st.CurrentExpenses, time.Now().UTC()); err != nil {
		return fmt.Errorf("put budget: %w", err)
	}
	return nil
}

// Update locks the budget row, applies fn and writes state plus history in one transaction.
func (s *PostgresStore) Update(ctx context.Context, userID string, fn MutateFunc) (State, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return State{}, ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return State{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	st, err := scanPostgresState(tx.QueryRow(ctx, `SELECT username, expected_income, current_balance, savings, expected_expenses, current_expenses
        FROM budgets WHERE user_id = $1 FOR UPDATE`, id))
	if err != nil {
		return State{}, err
	}

	entry, err := fn(&st)
	if err != nil {
		return State{}, err
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, upsertBudgetQuery, id, st.Username, st.ExpectedIncome, st.CurrentBalance, st.Savings,
		st.ExpectedExpenses, st.CurrentExpenses, now); err != nil {
		return State{}, fmt.Errorf("write budget: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO budget_history (user_id, command, label, amount, balance_after, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, entry.Command, entry.Label, entry.Amount, entry.BalanceAfter, now); err != nil {
		return State{}, fmt.Errorf("write history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return State{}, err
	}
	return st, nil
}

// History returns up to limit entries for userID, newest first.
func (s *PostgresStore) History(ctx context.Context, userID string, limit int) ([]Entry, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return []Entry{}, nil
	}
	rows, err := s.db.Query(ctx, `SELECT command, label, amount, balance_after, created_at
        FROM budget_history WHERE user_id = $1 ORDER BY id DESC LIMIT $2`, id, clampLimit(limit))
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

func scanPostgresState(row pgx.Row) (State, error) {
	var st State
	if err := row.Scan(&st.Username, &st.ExpectedIncome, &st.CurrentBalance, &st.Savings, &st.ExpectedExpenses, &st.CurrentExpenses); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return State{}, ErrNotFound
		}
		return State{}, fmt.Errorf("select budget: %w", err)
	}
	st.normalize()
	return st, nil
}
