// Package config loads, normalizes, and validates snapsort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI needs: source and output roots, the recognized image extension set,
// duplicate detection mode and thresholds, and the duplicate policy.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths, canonical mode strings, and clear validation
// errors.
package config
