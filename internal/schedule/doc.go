// Package schedule runs the persistent timetable of organization passes:
// daily, weekly, and one-shot entries that survive daemon restarts.
package schedule
