package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"shelf/internal/store"
)

// Cadence names how often a schedule entry repeats.
type Cadence string

const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
	CadenceOnce   Cadence = "once"
)

// Entry is one scheduled organization pass.
type Entry struct {
	ID      string
	Cadence Cadence
	// TimeOfDay is the local wall-clock firing time as "HH:MM". Unused for
	// one-shot entries.
	TimeOfDay string
	// Weekday is set for weekly entries only.
	Weekday  *time.Weekday
	NextFire time.Time
}

// ParseTimeOfDay validates an "HH:MM" wall-clock time.
func ParseTimeOfDay(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("time of day %q: want HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("time of day %q: hour out of range", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time of day %q: minute out of range", value)
	}
	return hour, minute, nil
}

// ParseWeekday accepts full or three-letter English weekday names.
func ParseWeekday(value string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	case "tuesday", "tue":
		return time.Tuesday, nil
	case "wednesday", "wed":
		return time.Wednesday, nil
	case "thursday", "thu":
		return time.Thursday, nil
	case "friday", "fri":
		return time.Friday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("unknown weekday %q", value)
	}
}

// NewDaily creates a daily entry firing at the given "HH:MM", seeded with
// the first occurrence strictly after now.
func NewDaily(timeOfDay string, now time.Time) (Entry, error) {
	if _, _, err := ParseTimeOfDay(timeOfDay); err != nil {
		return Entry{}, err
	}
	entry := Entry{
		ID:        uuid.NewString(),
		Cadence:   CadenceDaily,
		TimeOfDay: timeOfDay,
	}
	entry.NextFire = entry.NextAfter(now)
	return entry, nil
}

// NewWeekly creates a weekly entry firing on the given weekday at "HH:MM".
func NewWeekly(weekday time.Weekday, timeOfDay string, now time.Time) (Entry, error) {
	if _, _, err := ParseTimeOfDay(timeOfDay); err != nil {
		return Entry{}, err
	}
	wd := weekday
	entry := Entry{
		ID:        uuid.NewString(),
		Cadence:   CadenceWeekly,
		TimeOfDay: timeOfDay,
		Weekday:   &wd,
	}
	entry.NextFire = entry.NextAfter(now)
	return entry, nil
}

// NewOnce creates a one-shot entry firing at the given instant. It is
// removed after it fires.
func NewOnce(at time.Time, now time.Time) (Entry, error) {
	if !at.After(now) {
		return Entry{}, fmt.Errorf("one-shot time %s is in the past", at.Format(time.RFC3339))
	}
	return Entry{
		ID:       uuid.NewString(),
		Cadence:  CadenceOnce,
		NextFire: at,
	}, nil
}

// NextAfter computes the first firing time strictly after now. An entry
// that fires at 22:00 and is evaluated at 22:00 moves to the next day,
// never the same instant.
func (e Entry) NextAfter(now time.Time) time.Time {
	switch e.Cadence {
	case CadenceOnce:
		return e.NextFire
	case CadenceDaily, CadenceWeekly:
		hour, minute, err := ParseTimeOfDay(e.TimeOfDay)
		if err != nil {
			return time.Time{}
		}
		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		for !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if e.Cadence == CadenceWeekly && e.Weekday != nil {
			for candidate.Weekday() != *e.Weekday {
				candidate = candidate.AddDate(0, 0, 1)
			}
		}
		return candidate
	default:
		return time.Time{}
	}
}

// Describe renders a human-readable cadence summary for status output.
func (e Entry) Describe() string {
	switch e.Cadence {
	case CadenceDaily:
		return fmt.Sprintf("daily at %s", e.TimeOfDay)
	case CadenceWeekly:
		if e.Weekday != nil {
			return fmt.Sprintf("weekly on %s at %s", e.Weekday.String(), e.TimeOfDay)
		}
		return fmt.Sprintf("weekly at %s", e.TimeOfDay)
	case CadenceOnce:
		return fmt.Sprintf("once at %s", e.NextFire.Format(time.RFC3339))
	default:
		return string(e.Cadence)
	}
}

func (e Entry) toRow() store.ScheduleRow {
	row := store.ScheduleRow{
		ID:        e.ID,
		Cadence:   string(e.Cadence),
		TimeOfDay: e.TimeOfDay,
		NextFire:  e.NextFire,
	}
	if e.Weekday != nil {
		value := int(*e.Weekday)
		row.Weekday = &value
	}
	return row
}

func entryFromRow(row store.ScheduleRow) Entry {
	entry := Entry{
		ID:        row.ID,
		Cadence:   Cadence(row.Cadence),
		TimeOfDay: row.TimeOfDay,
		NextFire:  row.NextFire,
	}
	if row.Weekday != nil {
		wd := time.Weekday(*row.Weekday)
		entry.Weekday = &wd
	}
	return entry
}
