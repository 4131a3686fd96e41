package procrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"wwisex/internal/logging"
)

// ErrToolNotFound reports a binary that does not exist or cannot be executed.
var ErrToolNotFound = errors.New("tool not found")

// maxLoggedOutput caps how much captured output LogAttrs renders per stream.
const maxLoggedOutput = 4 << 10

// waitDelay bounds how long Run waits for output pipes after the context kills
// a tool whose children still hold them open.
const waitDelay = 2 * time.Second

// Result captures a finished invocation.
type Result struct {
	Binary   string
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner starts a binary and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, binary string, args ...string) (Result, error)
}

// ExitError reports a tool that ran but exited non-zero.
type ExitError struct {
	Result Result
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Result.Binary, e.Result.ExitCode)
	if stderr := strings.TrimSpace(e.Result.Stderr); stderr != "" {
		msg += ": " + firstLine(stderr)
	}
	return msg
}

// Option configures an Exec runner.
type Option func(*Exec)

// WithTimeout bounds each invocation. Zero or negative disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Exec) {
		e.timeout = timeout
	}
}

// Exec runs tools through os/exec.
type Exec struct {
	timeout time.Duration
}

// New constructs the os/exec backed runner.
func New(opts ...Option) *Exec {
	runner := &Exec{}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Run executes binary with args, capturing stdout and stderr.
func (e *Exec) Run(ctx context.Context, binary string, args ...string) (Result, error) {
	result := Result{Binary: binary, Args: append([]string(nil), args...), ExitCode: -1}

	path, err := exec.LookPath(binary)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrToolNotFound, binary, err)
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, path, args...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	runErr := cmd.Run()
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr == nil {
		return result, nil
	}
	if ctxErr := runCtx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s: %w", binary, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return result, &ExitError{Result: result}
	}
	if errors.Is(runErr, fs.ErrNotExist) || errors.Is(runErr, fs.ErrPermission) {
		return result, fmt.Errorf("%w: %s: %w", ErrToolNotFound, binary, runErr)
	}
	return result, fmt.Errorf("run %s: %w", binary, runErr)
}

// LogAttrs renders the invocation for structured logging. Captured streams
// are trimmed and truncated.
func (r Result) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		logging.String("tool", r.Binary),
		logging.Strings("args", r.Args),
		logging.Int("exit_code", r.ExitCode),
		logging.Duration("duration", r.Duration),
	}
	if out := truncate(strings.TrimSpace(r.Stdout)); out != "" {
		attrs = append(attrs, logging.String("stdout", out))
	}
	if errOut := truncate(strings.TrimSpace(r.Stderr)); errOut != "" {
		attrs = append(attrs, logging.String("stderr", errOut))
	}
	return attrs
}

// IsExitError reports whether err is a non-zero exit and returns its result.
func IsExitError(err error) (Result, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Result, true
	}
	return Result{}, false
}

func truncate(s string) string {
	if len(s) <= maxLoggedOutput {
		return s
	}
	return s[len(s)-maxLoggedOutput:]
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}
