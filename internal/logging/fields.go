package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldPath is the standardized structured logging key for file paths.
	FieldPath = "path"
	// FieldCategory is the standardized structured logging key for category labels.
	FieldCategory = "category"
	// FieldDestination is the standardized structured logging key for move targets.
	FieldDestination = "destination"
	// FieldAction is the standardized structured logging key for organize actions.
	FieldAction = "action"
	// FieldDigest is the standardized structured logging key for content digests.
	FieldDigest = "digest"
	// FieldScheduleID is the standardized structured logging key for schedule entry identifiers.
	FieldScheduleID = "schedule_id"
	// FieldTrigger is the standardized structured logging key for the source of an organize event.
	FieldTrigger = "trigger"
	// FieldErrorHint suggests a next step when a warning or error is logged.
	FieldErrorHint = "error_hint"
)
