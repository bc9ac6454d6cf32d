package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LookupDigest returns the canonical path registered for digest, if any.
func (s *Store) LookupDigest(ctx context.Context, digest string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var path string
	err := s.db.QueryRowContext(ctx, "SELECT path FROM digests WHERE digest = ?", digest).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup digest: %w", err)
	}
	return path, true, nil
}

// RegisterDigest records path as the canonical location for digest,
// replacing any previous (stale) entry.
func (s *Store) RegisterDigest(ctx context.Context, digest, path string) error {
	if digest == "" {
		return errors.New("digest is required")
	}
	_, err := s.execWithRetry(ctx,
		"INSERT INTO digests (digest, path, first_seen) VALUES (?, ?, ?) "+
			"ON CONFLICT(digest) DO UPDATE SET path = excluded.path, first_seen = excluded.first_seen",
		digest, path, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("register digest: %w", err)
	}
	return nil
}

// ForgetDigest removes a digest registration; used to roll back after a
// failed move so a later pass can retry cleanly.
func (s *Store) ForgetDigest(ctx context.Context, digest string) error {
	if _, err := s.execWithRetry(ctx, "DELETE FROM digests WHERE digest = ?", digest); err != nil {
		return fmt.Errorf("forget digest: %w", err)
	}
	return nil
}

// ClearDigests empties the digest index ahead of a rebuild from disk.
func (s *Store) ClearDigests(ctx context.Context) error {
	if _, err := s.execWithRetry(ctx, "DELETE FROM digests"); err != nil {
		return fmt.Errorf("clear digests: %w", err)
	}
	return nil
}

// DigestCount reports the number of registered digests.
func (s *Store) DigestCount(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM digests").Scan(&count); err != nil {
		return 0, fmt.Errorf("count digests: %w", err)
	}
	return count, nil
}
