// Package main hosts the wwisex CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration (file, first-run prompts or
// defaults), builds the logger, and hands off to internal/pipeline for runs.
// The remaining commands inspect state a run leaves behind: the hash ledger,
// the run history database and the external tool dependencies.
package main
