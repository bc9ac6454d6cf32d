package store

import (
	"context"
	"fmt"
	"time"

	"shelf/internal/outcome"
)

// AppendOutcome persists one processing result to the outcome log.
func (s *Store) AppendOutcome(ctx context.Context, rec outcome.Record) error {
	_, err := s.execWithRetry(ctx,
		"INSERT INTO outcomes (id, path, action, destination, reason, recorded_at) VALUES (?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Path, string(rec.Action), rec.Destination, rec.Reason,
		rec.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append outcome: %w", err)
	}
	return nil
}

// RecentOutcomes returns up to limit results, newest first.
func (s *Store) RecentOutcomes(ctx context.Context, limit int) ([]outcome.Record, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, path, action, destination, reason, recorded_at FROM outcomes ORDER BY recorded_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []outcome.Record
	for rows.Next() {
		var (
			rec      outcome.Record
			action   string
			recorded string
		)
		if err := rows.Scan(&rec.ID, &rec.Path, &action, &rec.Destination, &rec.Reason, &recorded); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		rec.Action = outcome.Action(action)
		parsed, err := time.Parse(time.RFC3339Nano, recorded)
		if err != nil {
			return nil, fmt.Errorf("parse outcome recorded_at %q: %w", recorded, err)
		}
		rec.RecordedAt = parsed
		out = append(out, rec)
	}
	return out, rows.Err()
}
