// Package rules implements the pure classification rule engine: an ordered,
// first-match-wins glob rule list with a built-in extension table fallback.
// Rulesets are immutable so the organizer can swap them atomically at
// runtime without coordinating with in-flight classifications.
package rules
