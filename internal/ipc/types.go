package ipc

import "time"

// StatusRequest asks for daemon runtime information.
type StatusRequest struct{}

// StatusResponse reports daemon runtime information.
type StatusResponse struct {
	Running       bool
	PID           int
	WatchedRoot   string
	DatabasePath  string
	LockPath      string
	QueueDepth    int
	DigestCount   int64
	ScheduleCount int
	LastPass      *PassSummary
}

// PassSummary mirrors one organization pass result across the wire.
type PassSummary struct {
	Trigger    string
	Started    time.Time
	Duration   time.Duration
	Moved      int
	Duplicates int
	Skipped    int
	Failed     int
}

// OrganizeRequest asks for a full organization pass.
type OrganizeRequest struct{}

// OrganizeResponse carries the pass summary.
type OrganizeResponse struct {
	Summary PassSummary
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse acknowledges a shutdown request.
type StopResponse struct {
	Stopped bool
}

// ReloadRulesRequest asks the daemon to re-read rules from its config file.
type ReloadRulesRequest struct{}

// ReloadRulesResponse reports the number of user rules now active.
type ReloadRulesResponse struct {
	Rules int
}

// ScheduleAddRequest describes a new schedule entry. Cadence is one of
// "daily", "weekly", or "once". TimeOfDay is "HH:MM" for recurring
// cadences; At is the firing instant for one-shot entries.
type ScheduleAddRequest struct {
	Cadence   string
	TimeOfDay string
	Weekday   string
	At        time.Time
}

// ScheduleAddResponse returns the created entry.
type ScheduleAddResponse struct {
	Entry ScheduleEntry
}

// ScheduleEntry mirrors a schedule entry across the wire.
type ScheduleEntry struct {
	ID       string
	Cadence  string
	Describe string
	NextFire time.Time
}

// ScheduleRemoveRequest deletes an entry by id.
type ScheduleRemoveRequest struct {
	ID string
}

// ScheduleRemoveResponse reports whether the entry existed.
type ScheduleRemoveResponse struct {
	Removed bool
}

// ScheduleListRequest asks for the full timetable.
type ScheduleListRequest struct{}

// ScheduleListResponse carries the timetable ordered by next fire time.
type ScheduleListResponse struct {
	Entries []ScheduleEntry
}

// OutcomesRequest asks for recent processing results.
type OutcomesRequest struct {
	Limit int
}

// OutcomeRecord mirrors one processing result across the wire.
type OutcomeRecord struct {
	ID          string
	Path        string
	Action      string
	Destination string
	Reason      string
	RecordedAt  time.Time
}

// OutcomesResponse carries recent results, newest first.
type OutcomesResponse struct {
	Records []OutcomeRecord
}

// RebuildIndexRequest asks for a digest index rebuild from disk.
type RebuildIndexRequest struct{}

// RebuildIndexResponse reports how many files were indexed.
type RebuildIndexResponse struct {
	Indexed int
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the notification test result.
type TestNotificationResponse struct {
	Sent    bool
	Message string
}
