package testsupport

import (
	"context"
	"testing"

	"tubelift/internal/config"
	"tubelift/internal/eventlog"
)

// MustOpenEventStore opens the SQLite event store for tests and registers cleanup.
func MustOpenEventStore(t testing.TB, cfg *config.Config) *eventlog.Store {
	t.Helper()

	store, err := eventlog.Open(context.Background(), cfg.EventLog.DatabasePath)
	if err != nil {
		t.Fatalf("eventlog.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
