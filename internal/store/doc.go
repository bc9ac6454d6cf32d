// Package store owns shelf's SQLite persistence: the digest index used for
// duplicate detection, the schedule set, and the outcome log. Access runs
// through the organizer's serialized event processing, so the store needs no
// locking discipline beyond SQLite's own busy handling.
package store
