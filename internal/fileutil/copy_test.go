package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"shelf/internal/fingerprint"
)

func TestCopyFileVerifiedMatchesOnDiskDigest(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	payload := bytes.Repeat([]byte("shelf"), 40_000)
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := copyFileVerified(src, dst); err != nil {
		t.Fatalf("copyFileVerified: %v", err)
	}

	srcDigest, err := fingerprint.Digest(src)
	if err != nil {
		t.Fatalf("digest source: %v", err)
	}
	dstDigest, err := fingerprint.Digest(dst)
	if err != nil {
		t.Fatalf("digest destination: %v", err)
	}
	if srcDigest != dstDigest {
		t.Fatalf("destination digest %s differs from source %s", dstDigest, srcDigest)
	}
}

func TestCopyFileVerifiedRefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := os.WriteFile(dst, []byte("unrelated"), 0o644); err != nil {
		t.Fatalf("write destination: %v", err)
	}

	if err := copyFileVerified(src, dst); err == nil {
		t.Fatal("expected error for pre-existing destination")
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "unrelated" {
		t.Fatalf("pre-existing destination clobbered: %q err=%v", data, err)
	}
}
