package testsupport

import (
	"context"
	"testing"

	"precis/internal/config"
	"precis/internal/ledger"
)

// MustOpenLedger opens a ledger.Store for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustBeginRun records a run start for tests using the provided store.
func MustBeginRun(t testing.TB, store *ledger.Store, listing string, discovered, skipped int) *ledger.Run {
	t.Helper()

	run, err := store.BeginRun(context.Background(), listing, discovered, skipped)
	if err != nil {
		t.Fatalf("store.BeginRun: %v", err)
	}
	return run
}
