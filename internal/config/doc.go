// Package config loads, normalizes, and validates tubelift configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// YANDEX_DISK_TOKEN and MATRIX_ACCESS_TOKEN. The Config type centralizes every
// knob the daemon and CLI need so the temp directory, storage credentials, and
// chat transport are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
