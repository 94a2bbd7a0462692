// Package config loads, normalizes, and validates afisha configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and daemon need: storage backend selection, scraping parameters,
// the registry API endpoint, and the set of theaters whose showtimes are
// ingested.
package config
