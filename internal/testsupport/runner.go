package testsupport

import (
	"context"
	"slices"
	"sync"

	"wwisex/internal/procrun"
)

// Call records one invocation seen by a FakeRunner.
type Call struct {
	Binary string
	Args   []string
}

// FakeRunner is a procrun.Runner that records calls and delegates to Handle.
// A nil Handle succeeds without side effects. It is safe for concurrent use.
type FakeRunner struct {
	Handle func(ctx context.Context, binary string, args []string) (procrun.Result, error)

	mu    sync.Mutex
	calls []Call
}

// Run records the call and invokes Handle.
func (f *FakeRunner) Run(ctx context.Context, binary string, args ...string) (procrun.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Binary: binary, Args: slices.Clone(args)})
	f.mu.Unlock()

	if f.Handle == nil {
		return procrun.Result{Binary: binary, Args: args}, nil
	}
	return f.Handle(ctx, binary, args)
}

// Calls returns every recorded invocation.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsFor returns the invocations of binary.
func (f *FakeRunner) CallsFor(binary string) []Call {
	var matched []Call
	for _, c := range f.Calls() {
		if c.Binary == binary {
			matched = append(matched, c)
		}
	}
	return matched
}

// ExitFailure builds the error a runner returns for a non-zero exit.
func ExitFailure(binary string, code int, stderr string) error {
	return &procrun.ExitError{Result: procrun.Result{Binary: binary, ExitCode: code, Stderr: stderr}}
}
