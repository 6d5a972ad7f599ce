// Package config loads, normalizes, and validates condish configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a local .env file and honours environment
// fallbacks such as OPENROUTER_API_KEY and CONDISH_API_TOKEN. The Config type
// centralizes every knob the daemon and CLI need: data and report directories,
// the collaborator backends, the persistence store and its size bound.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
