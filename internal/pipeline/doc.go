// Package pipeline runs one end-to-end extraction: preflight, archive
// extraction, manifest parsing, bank extraction, deduplication, unknown-media
// relocation, transcoding, ledger persistence and mount cleanup.
//
// A run holds a file lock next to the ledger for its whole duration so two
// runs never write the same ledger, and records a summary row in the history
// store whether it succeeds or fails. The ledger is only replaced after every
// stage has completed.
package pipeline
