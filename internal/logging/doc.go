// Package logging assembles structured slog loggers and formatting helpers used
// across wwisex.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code tags log lines
// with the run identifier and stage automatically. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
