package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"shelf/internal/fingerprint"
)

// ErrDigestMismatch reports that a cross-volume copy did not reproduce the
// source bytes. The source is left untouched when this is returned.
var ErrDigestMismatch = errors.New("copy digest mismatch")

// EnsureDir creates dir (and parents) if absent.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// UniqueDestination returns dir/name, appending " (n)" before the extension
// until the path does not exist. It never reuses the path of an existing,
// unrelated file.
func UniqueDestination(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
		return candidate
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
	}
}

// MoveFile relocates src to dst. Same-volume moves are a single atomic
// rename. Across volumes it falls back to copy-verify-delete: the source is
// removed only after the copied bytes hash identically to the source. dst
// must not exist; callers resolve collisions first via UniqueDestination.
func MoveFile(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(renameErr, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return renameErr
	}

	if err := copyFileVerified(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		// Copy is verified; a lingering source is recoverable, a lost file is not.
		return fmt.Errorf("remove source after verified copy: %w", err)
	}
	return nil
}

// copyFileVerified streams src to dst, then re-reads dst from disk and
// compares its SHA-256 digest against the bytes that were read from src.
// Removes dst on any failure or mismatch.
func copyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHasher))
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("%w: source %d bytes, copied %d bytes", ErrDigestMismatch, srcSize, written)
	}

	// Re-read the destination rather than trusting the writer: the bytes
	// must be back on disk before the source may be deleted.
	dstDigest, err := fingerprint.Digest(dst)
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("verify copy: %w", err)
	}
	if dstDigest != hex.EncodeToString(srcHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return ErrDigestMismatch
	}
	return nil
}
