package testsupport

import (
	"testing"

	"shelf/internal/config"
	"shelf/internal/store"
)

// MustOpenStore opens the sqlite store for the given test config and closes
// it when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}
