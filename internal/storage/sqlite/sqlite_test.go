package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mememadness/server/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Load on empty store returns absent", func(t *testing.T) {
		state, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if state != nil {
			t.Errorf("expected absent entry, got %+v", state)
		}
	})

	t.Run("Save then Load round-trips", func(t *testing.T) {
		end := time.Now().Add(20 * time.Minute).UnixMilli()
		if err := store.Save(ctx, storage.TimerState{GameStarted: true, TimerEndTime: end}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		state, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if state == nil {
			t.Fatal("expected entry to exist")
		}
		if !state.GameStarted || state.TimerEndTime != end {
			t.Errorf("round-trip mismatch: %+v", state)
		}
	})

	t.Run("Save replaces prior entry", func(t *testing.T) {
		first := time.Now().Add(10 * time.Minute).UnixMilli()
		second := time.Now().Add(30 * time.Minute).UnixMilli()

		if err := store.Save(ctx, storage.TimerState{GameStarted: true, TimerEndTime: first}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := store.Save(ctx, storage.TimerState{GameStarted: true, TimerEndTime: second}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		state, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if state.TimerEndTime != second {
			t.Errorf("expected latest value %d, got %d", second, state.TimerEndTime)
		}
	})

	t.Run("Clear removes the entry", func(t *testing.T) {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}

		state, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if state != nil {
			t.Errorf("expected entry gone after clear, got %+v", state)
		}

		// Clearing an absent entry is fine.
		if err := store.Clear(ctx); err != nil {
			t.Errorf("Clear on absent entry should not fail: %v", err)
		}
	})
}
