package testsupport

import (
	"testing"

	"mediapull/internal/config"
	"mediapull/internal/history"
)

// MustOpenHistory opens the configured history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.OpenFromConfig(cfg)
	if err != nil {
		t.Fatalf("history.OpenFromConfig: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
