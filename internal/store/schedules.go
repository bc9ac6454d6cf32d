package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ScheduleRow is the persisted form of a schedule entry. The schedule
// package owns the richer in-memory representation.
type ScheduleRow struct {
	ID        string
	Cadence   string
	TimeOfDay string
	Weekday   *int
	NextFire  time.Time
}

// SaveSchedule inserts or updates a schedule entry.
func (s *Store) SaveSchedule(ctx context.Context, row ScheduleRow) error {
	if row.ID == "" {
		return errors.New("schedule id is required")
	}
	var weekday any
	if row.Weekday != nil {
		weekday = *row.Weekday
	}
	_, err := s.execWithRetry(ctx,
		"INSERT INTO schedules (id, cadence, time_of_day, day_of_week, next_fire) VALUES (?, ?, ?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET cadence = excluded.cadence, time_of_day = excluded.time_of_day, "+
			"day_of_week = excluded.day_of_week, next_fire = excluded.next_fire",
		row.ID, row.Cadence, row.TimeOfDay, weekday, row.NextFire.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return nil
}

// DeleteSchedule removes a schedule entry; reports whether it existed.
func (s *Store) DeleteSchedule(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete schedule rows: %w", err)
	}
	return affected > 0, nil
}

// ListSchedules returns all schedule entries ordered by next fire time.
func (s *Store) ListSchedules(ctx context.Context) ([]ScheduleRow, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, cadence, time_of_day, day_of_week, next_fire FROM schedules ORDER BY next_fire ASC")
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []ScheduleRow
	for rows.Next() {
		var (
			row      ScheduleRow
			weekday  sql.NullInt64
			nextFire string
		)
		if err := rows.Scan(&row.ID, &row.Cadence, &row.TimeOfDay, &weekday, &nextFire); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		if weekday.Valid {
			value := int(weekday.Int64)
			row.Weekday = &value
		}
		parsed, err := time.Parse(time.RFC3339Nano, nextFire)
		if err != nil {
			return nil, fmt.Errorf("parse schedule next_fire %q: %w", nextFire, err)
		}
		row.NextFire = parsed
		out = append(out, row)
	}
	return out, rows.Err()
}
