// Package watcher turns raw filesystem notifications on the watched root
// into settled-file events. Each file is tracked through a debounce window
// and emitted exactly once after its size stops changing.
package watcher
