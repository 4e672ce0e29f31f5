// Package config loads, normalizes, and validates photoclean configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: output roots, scan thresholds, logging format and rotation,
// history retention, and watch-mode settling.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
