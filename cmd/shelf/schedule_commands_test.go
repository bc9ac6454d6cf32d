package main

import (
	"testing"
	"time"
)

func TestBuildScheduleRequestDaily(t *testing.T) {
	req, err := buildScheduleRequest("22:00", "", "")
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if req.Cadence != "daily" || req.TimeOfDay != "22:00" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestBuildScheduleRequestWeekly(t *testing.T) {
	req, err := buildScheduleRequest("", "sat@08:30", "")
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if req.Cadence != "weekly" || req.Weekday != "sat" || req.TimeOfDay != "08:30" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestBuildScheduleRequestWeeklyRequiresSeparator(t *testing.T) {
	if _, err := buildScheduleRequest("", "saturday 08:30", ""); err == nil {
		t.Fatal("expected error for missing @ separator")
	}
}

func TestBuildScheduleRequestOnce(t *testing.T) {
	req, err := buildScheduleRequest("", "", "2026-09-01T07:00:00Z")
	if err != nil {
		t.Fatalf("once: %v", err)
	}
	want := time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC)
	if req.Cadence != "once" || !req.At.Equal(want) {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestBuildScheduleRequestRejectsAmbiguousFlags(t *testing.T) {
	if _, err := buildScheduleRequest("", "", ""); err == nil {
		t.Fatal("expected error when no cadence flag set")
	}
	if _, err := buildScheduleRequest("22:00", "sat@08:00", ""); err == nil {
		t.Fatal("expected error when two cadence flags set")
	}
	if _, err := buildScheduleRequest("", "", "not-a-time"); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}
