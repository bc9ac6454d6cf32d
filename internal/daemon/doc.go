// Package daemon wires the watcher, scheduler, and organizer into a
// single-instance background service, exposing control operations to the
// IPC layer and a small HTTP API for observation.
package daemon
