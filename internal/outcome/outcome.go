package outcome

import (
	"time"

	"github.com/google/uuid"
)

// Action describes what the organizer did with one file.
type Action string

const (
	// ActionMoved means the file was classified and moved into its category folder.
	ActionMoved Action = "moved"
	// ActionDuplicate means identical content already exists; the file went to the duplicates folder.
	ActionDuplicate Action = "duplicate"
	// ActionSkipped means the file was left in place and will be reconsidered on a later pass.
	ActionSkipped Action = "skipped"
	// ActionFailed means the move was attempted and did not complete; the source is untouched.
	ActionFailed Action = "failed"
)

// Record is the result of processing one file, consumed by the outcome log
// and the notification collaborator.
type Record struct {
	ID          string
	Path        string
	Action      Action
	Destination string
	Reason      string
	RecordedAt  time.Time
}

// NewRecord stamps a record with an identifier and timestamp.
func NewRecord(path string, action Action, destination, reason string) Record {
	return Record{
		ID:          uuid.NewString(),
		Path:        path,
		Action:      action,
		Destination: destination,
		Reason:      reason,
		RecordedAt:  time.Now().UTC(),
	}
}
