// Package config loads, normalizes, and validates clerk configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the CLERK_SOURCE_DIR and CLERK_DEST_DIR environment
// fallbacks. Validate checks the settings themselves; ValidateRun adds the
// checks that only matter right before an organize run touches the disk.
package config
