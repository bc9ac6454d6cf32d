// Package organizer runs the serialized event loop that turns watcher
// events, schedule fires, and manual requests into organization passes.
// Fingerprinting is parallel; deciding and moving is strictly sequential,
// which keeps the digest index single-writer without locks.
package organizer
