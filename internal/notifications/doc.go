// Package notifications delivers organizer events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set. Pass,
// file, and error events can be gated independently so a noisy watched folder
// does not flood the subscriber.
//
// Extend this package if you need alternative transports; all organizer code
// depends only on the simple Service interface.
package notifications
