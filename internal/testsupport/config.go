package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"shelf/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test
// and timing short enough for tests to exercise settle behavior quickly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WatchedRoot = filepath.Join(base, "watched")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Watcher.DebounceWindowMS = 50
	cfg.Watcher.SettlePollMS = 10

	if err := os.MkdirAll(cfg.Paths.WatchedRoot, 0o755); err != nil {
		t.Fatalf("create watched root: %v", err)
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithRules sets the ordered classification rules on the test config.
func WithRules(list ...config.Rule) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Rules = list
	}
}

// WithDebounce overrides the watcher timing on the test config.
func WithDebounce(debounceMS, settlePollMS int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Watcher.DebounceWindowMS = debounceMS
		cfg.Watcher.SettlePollMS = settlePollMS
	}
}
