// Package config loads, normalizes, and validates shelf's TOML
// configuration.
//
// Load resolves the config file (explicit path, ~/.config/shelf/config.toml,
// or ./shelf.toml), decodes it over repository defaults, expands all path
// fields, and validates the result. Other packages treat the returned Config
// as a read-only snapshot; rule hot-reload goes through the organizer, not
// through re-parsing config mid-run.
package config
