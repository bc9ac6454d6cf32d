package fingerprint_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"shelf/internal/fingerprint"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDigestIdenticalContentMatches(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("shelf"), 50_000) // larger than one chunk

	a := writeFile(t, dir, "a.bin", content)
	b := writeFile(t, dir, "b.bin", content)

	digestA, err := fingerprint.Digest(a)
	if err != nil {
		t.Fatalf("Digest(a): %v", err)
	}
	digestB, err := fingerprint.Digest(b)
	if err != nil {
		t.Fatalf("Digest(b): %v", err)
	}
	if digestA != digestB {
		t.Fatalf("identical content produced different digests: %s vs %s", digestA, digestB)
	}
	if len(digestA) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(digestA))
	}
}

func TestDigestDiffersForDifferentContent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", []byte("one"))
	b := writeFile(t, dir, "b.txt", []byte("two"))

	digestA, _ := fingerprint.Digest(a)
	digestB, _ := fingerprint.Digest(b)
	if digestA == digestB {
		t.Fatal("different content produced identical digests")
	}
}

func TestDigestMissingFileFails(t *testing.T) {
	if _, err := fingerprint.Digest(filepath.Join(t.TempDir(), "gone.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDigestEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty", nil)
	digest, err := fingerprint.Digest(path)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	// SHA-256 of the empty input.
	if digest != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("unexpected empty digest %s", digest)
	}
}
