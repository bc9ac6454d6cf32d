package schedule

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"22:00", 22, 0, true},
		{"00:00", 0, 0, true},
		{"9:30", 9, 30, true},
		{"23:59", 23, 59, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"noon", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		hour, minute, err := ParseTimeOfDay(tc.in)
		if tc.ok && err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error %v", tc.in, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error", tc.in)
			}
			continue
		}
		if hour != tc.hour || minute != tc.minute {
			t.Errorf("ParseTimeOfDay(%q) = %d:%d, want %d:%d", tc.in, hour, minute, tc.hour, tc.minute)
		}
	}
}

func TestDailyNextFireAdvancesOneDay(t *testing.T) {
	now := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	entry := Entry{Cadence: CadenceDaily, TimeOfDay: "22:00"}

	next := entry.NextAfter(now)
	want := time.Date(2024, 1, 2, 22, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("NextAfter at the firing instant = %s, want %s", next, want)
	}
}

func TestDailyNextFireSameDayWhenStillAhead(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 15, 0, 0, time.UTC)
	entry := Entry{Cadence: CadenceDaily, TimeOfDay: "22:00"}

	next := entry.NextAfter(now)
	want := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("NextAfter = %s, want %s", next, want)
	}
}

func TestWeeklyNextFireLandsOnWeekday(t *testing.T) {
	// 2024-01-01 is a Monday.
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	wd := time.Friday
	entry := Entry{Cadence: CadenceWeekly, TimeOfDay: "09:00", Weekday: &wd}

	next := entry.NextAfter(now)
	want := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("NextAfter = %s, want %s", next, want)
	}
	if next.Weekday() != time.Friday {
		t.Fatalf("fired on %s, want Friday", next.Weekday())
	}
}

func TestWeeklyNextFireSkipsToNextWeek(t *testing.T) {
	// Monday noon asking for Monday 09:00 means next Monday.
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	wd := time.Monday
	entry := Entry{Cadence: CadenceWeekly, TimeOfDay: "09:00", Weekday: &wd}

	next := entry.NextAfter(now)
	want := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("NextAfter = %s, want %s", next, want)
	}
}

func TestNewOnceRejectsPast(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if _, err := NewOnce(now.Add(-time.Minute), now); err == nil {
		t.Fatal("expected error for one-shot time in the past")
	}
	entry, err := NewOnce(now.Add(time.Hour), now)
	if err != nil {
		t.Fatalf("NewOnce: %v", err)
	}
	if !entry.NextFire.Equal(now.Add(time.Hour)) {
		t.Fatalf("NextFire = %s", entry.NextFire)
	}
}

func TestParseWeekday(t *testing.T) {
	if wd, err := ParseWeekday("Fri"); err != nil || wd != time.Friday {
		t.Fatalf("ParseWeekday(Fri) = %v, %v", wd, err)
	}
	if wd, err := ParseWeekday("wednesday"); err != nil || wd != time.Wednesday {
		t.Fatalf("ParseWeekday(wednesday) = %v, %v", wd, err)
	}
	if _, err := ParseWeekday("someday"); err == nil {
		t.Fatal("expected error for unknown weekday")
	}
}

func TestRowRoundTripKeepsWeekday(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entry, err := NewWeekly(time.Saturday, "07:30", now)
	if err != nil {
		t.Fatalf("NewWeekly: %v", err)
	}

	back := entryFromRow(entry.toRow())
	if back.ID != entry.ID || back.Cadence != entry.Cadence || back.TimeOfDay != entry.TimeOfDay {
		t.Fatalf("round trip changed entry: %+v vs %+v", back, entry)
	}
	if back.Weekday == nil || *back.Weekday != time.Saturday {
		t.Fatalf("weekday lost in round trip: %+v", back.Weekday)
	}
	if !back.NextFire.Equal(entry.NextFire) {
		t.Fatalf("next fire changed: %s vs %s", back.NextFire, entry.NextFire)
	}
}
