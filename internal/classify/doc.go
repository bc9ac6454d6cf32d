// Package classify combines the rule engine, the content fingerprinter, and
// the digest index into the per-file decision: move to category, quarantine
// as duplicate, or defer. Decisions reserve their destination in the digest
// index so the organizer can roll a failed move back.
package classify
