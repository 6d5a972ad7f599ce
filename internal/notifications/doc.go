// Package notifications delivers session events via ntfy.
//
// The ntfy topic comes from the [notifications] section of config.toml; when
// it is empty NewService returns a no-op. Per-event toggles in the same
// section silence inspection, settlement or error messages individually.
package notifications
