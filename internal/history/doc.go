// Package history keeps a SQLite table of past extraction runs.
//
// Each pipeline run writes one row when it finishes, successful or not, so
// the CLI can show what recent runs moved, skipped and converted. The store
// is opened per run and per CLI invocation; it is never required for the
// extraction itself.
package history
