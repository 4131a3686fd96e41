// Package extract fans archive and sound bank extraction out over the worker
// pool.
//
// Archive extraction runs UnrealPak once per archive and filter glob; bank
// extraction runs bnkextr once per bank named by the manifest. Tool failures
// are logged and counted so one bad archive or bank does not stop the run,
// but a missing tool binary aborts the stage.
package extract
