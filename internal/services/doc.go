// Package services holds the external tool clients wwisex drives and the
// error markers shared by the pipeline stages.
//
// Each sub-package wraps one command-line tool (UnrealPak, bnkextr, ww2ogg,
// revorb) behind a small client that accepts an injectable procrun.Runner.
// The markers and Wrap helper in this package tag stage failures so the
// pipeline can pick a history status and a user-facing hint.
package services
