// Package config loads, normalizes, and validates wwisex configuration data.
//
// It supplies repository defaults (the Engine/ tool layout, WwiseAudio/Windows
// source root, Output destination), expands user paths including tilde
// shortcuts, and reads either the TOML configuration or the flat JSON object
// produced by earlier releases. Providers decide where a run's configuration
// comes from: an existing file, interactive first-run prompts, or defaults.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, sane worker limits, and clear validation errors.
package config
