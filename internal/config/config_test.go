package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"shelf/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config file")
	}
	if cfg.Organizer.DuplicatesDir != "Duplicates" {
		t.Fatalf("unexpected duplicates dir: %q", cfg.Organizer.DuplicatesDir)
	}
	if cfg.Watcher.DebounceWindowMS != 2000 || cfg.Watcher.SettlePollMS != 500 {
		t.Fatalf("unexpected watcher defaults: %+v", cfg.Watcher)
	}
	if !filepath.IsAbs(cfg.Paths.WatchedRoot) {
		t.Fatalf("watched root not expanded: %q", cfg.Paths.WatchedRoot)
	}
}

func TestLoadParsesRulesInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
watched_root = "` + dir + `"

[[rules]]
pattern = "*.jpg"
category = "Images"

[[rules]]
pattern = "*.txt"
category = "Documents"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be found, got %q exists=%v", path, resolved, exists)
	}
	if len(cfg.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(cfg.Rules))
	}
	if cfg.Rules[0].Pattern != "*.jpg" || cfg.Rules[1].Category != "Documents" {
		t.Fatalf("rule order not preserved: %+v", cfg.Rules)
	}
}

func TestLoadRejectsRuleWithoutCategory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[[rules]]
pattern = "*.jpg"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for rule without category")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestValidateRejectsNestedDuplicatesDir(t *testing.T) {
	cfg := config.Default()
	cfg.Organizer.DuplicatesDir = "a/b"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for nested duplicates dir")
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config did not load: exists=%v err=%v", exists, err)
	}
}
