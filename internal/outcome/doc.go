// Package outcome defines the per-file processing results the organizer
// records and the error taxonomy that maps failures onto them. Sentinel
// markers travel inside wrapped errors so any layer can classify a failure
// without string matching.
package outcome
