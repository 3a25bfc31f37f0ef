// Package notifications delivers run events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-event toggles let users silence run chatter while keeping
// error alerts.
//
// Extend this package if you need alternative transports; pipeline code
// depends only on the simple Service interface.
package notifications
