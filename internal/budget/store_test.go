package budget

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nos-web/budget/internal/infra"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	db, err := infra.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStore(db)
}

func forEachStore(t *testing.T, run func(t *testing.T, store Store)) {
	t.Run("memory", func(t *testing.T) { run(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { run(t, newSQLiteStore(t)) })
}

func TestStorePutGetRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		_, err := store.Get(ctx, "u-1")
		require.ErrorIs(t, err, ErrNotFound)

		st := NewState("alice")
		st.ExpectedIncome = 500_000
		st.CurrentBalance = 12_345
		st.Savings = 1_000
		st.ExpectedExpenses["rent"] = 100_000
		st.CurrentExpenses["rent"] = 40_000
		require.NoError(t, store.Put(ctx, "u-1", st))

		got, err := store.Get(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, st, got)

		// Create never overwrites an existing budget.
		require.NoError(t, store.Create(ctx, "u-1", NewState("alice")))
		got, err = store.Get(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, int64(12_345), got.CurrentBalance)
	})
}

func TestStoreUpdateFailureLeavesState(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		st := NewState("alice")
		st.CurrentBalance = 100
		require.NoError(t, store.Create(ctx, "u-1", st))

		boom := errors.New("boom")
		_, err := store.Update(ctx, "u-1", func(s *State) (Entry, error) {
			s.CurrentBalance = 0
			s.ExpectedExpenses["rent"] = 1
			return Entry{}, boom
		})
		require.ErrorIs(t, err, boom)

		got, err := store.Get(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, st, got)

		entries, err := store.History(ctx, "u-1", 0)
		require.NoError(t, err)
		assert.Empty(t, entries)

		_, err = store.Update(ctx, "missing", Command{Name: CommandGetPaid}.Apply)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStoreHistoryNewestFirst(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, "u-1", NewState("alice")))

		cmds := []Command{
			{Name: CommandSetIncome, Amount: amt(1_000)},
			{Name: CommandGetPaid},
			{Name: CommandNew, Label: "Rent", Amount: amt(600)},
			{Name: CommandPay, Label: "rent", Amount: amt(600)},
		}
		for _, cmd := range cmds {
			_, err := store.Update(ctx, "u-1", cmd.Apply)
			require.NoError(t, err)
		}

		entries, err := store.History(ctx, "u-1", 3)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, CommandPay, entries[0].Command)
		assert.Equal(t, "rent", entries[0].Label)
		assert.Equal(t, int64(600), entries[0].Amount)
		assert.Equal(t, CommandNew, entries[1].Command)
		assert.Equal(t, CommandGetPaid, entries[2].Command)
		assert.Equal(t, int64(1_000), entries[2].BalanceAfter)
		assert.False(t, entries[0].CreatedAt.IsZero())

		other, err := store.History(ctx, "u-2", 10)
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestStoreConcurrentUpdates(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, "u-1", NewState("alice")))

		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Update(ctx, "u-1", Command{Name: CommandGetPaid, Amount: amt(5)}.Apply)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, int64(workers*5), got.CurrentBalance)
	})
}
