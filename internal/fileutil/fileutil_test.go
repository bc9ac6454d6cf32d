package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"shelf/internal/fileutil"
)

func TestUniqueDestinationPrefersOriginalName(t *testing.T) {
	dir := t.TempDir()
	got := fileutil.UniqueDestination(dir, "a.jpg")
	if got != filepath.Join(dir, "a.jpg") {
		t.Fatalf("expected original name, got %q", got)
	}
}

func TestUniqueDestinationSuffixesOnCollision(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "a (1).jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	got := fileutil.UniqueDestination(dir, "a.jpg")
	if got != filepath.Join(dir, "a (2).jpg") {
		t.Fatalf("expected suffixed name, got %q", got)
	}
}

func TestUniqueDestinationHandlesNoExtension(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := fileutil.UniqueDestination(dir, "README")
	if got != filepath.Join(dir, "README (1)") {
		t.Fatalf("expected suffixed name, got %q", got)
	}
}

func TestMoveFileRenamesWithinVolume(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "sub", "dst.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := fileutil.EnsureDir(filepath.Dir(dst)); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	if err := fileutil.MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source still exists after move")
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "payload" {
		t.Fatalf("destination content wrong: %q err=%v", data, err)
	}
}

func TestMoveFileMissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	err := fileutil.MoveFile(filepath.Join(dir, "absent"), filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}
