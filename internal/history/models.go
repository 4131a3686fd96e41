package history

import (
	"context"
	"time"
)

// Status is the final state of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run summarizes one pipeline run.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	Status        Status
	Error         string
	Entries       int
	Moved         int
	Skipped       int
	Duplicates    int
	Unknown       int
	Transcoded    int
	Failed        int
	LedgerRecords int
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Recorder persists run summaries.
type Recorder interface {
	Record(ctx context.Context, run Run) error
}
