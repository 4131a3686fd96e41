// Package workpool runs independent units of work on a bounded number of
// goroutines and reports one outcome per unit.
package workpool

import (
	"context"
	"sync"
)

// Outcome pairs a job with the error its handler returned.
type Outcome[T any] struct {
	Job T
	Err error
}

// Failed reports whether the job's handler returned an error.
func (o Outcome[T]) Failed() bool {
	return o.Err != nil
}

// Run calls fn for every job using at most limit concurrent workers and
// returns the outcomes in input order. Jobs not started before ctx is
// cancelled report ctx.Err(). A limit below one runs jobs sequentially.
func Run[T any](ctx context.Context, limit int, jobs []T, fn func(context.Context, T) error) []Outcome[T] {
	outcomes := make([]Outcome[T], len(jobs))
	if len(jobs) == 0 {
		return outcomes
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(jobs) {
		limit = len(jobs)
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup
	for range limit {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				job := jobs[idx]
				if err := ctx.Err(); err != nil {
					outcomes[idx] = Outcome[T]{Job: job, Err: err}
					continue
				}
				outcomes[idx] = Outcome[T]{Job: job, Err: fn(ctx, job)}
			}
		}()
	}

	for idx := range jobs {
		indexCh <- idx
	}
	close(indexCh)
	wg.Wait()
	return outcomes
}

// Failures returns the outcomes whose handler failed.
func Failures[T any](outcomes []Outcome[T]) []Outcome[T] {
	var failed []Outcome[T]
	for _, o := range outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}
