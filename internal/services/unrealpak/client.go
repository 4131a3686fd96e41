package unrealpak

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wwisex/internal/procrun"
)

// Option configures the client.
type Option func(*Client)

// WithRunner injects a custom process runner (primarily for tests).
func WithRunner(runner procrun.Runner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// Client wraps UnrealPak archive extraction.
type Client struct {
	binary string
	runner procrun.Runner
}

// New constructs an UnrealPak client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("unrealpak binary required")
	}
	client := &Client{binary: binary, runner: procrun.New()}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

// Extract unpacks entries of archive matching filter into destRoot, honouring
// the mount point recorded in the archive. An empty filter extracts everything.
func (c *Client) Extract(ctx context.Context, archive, destRoot, filter string) (procrun.Result, error) {
	if strings.TrimSpace(archive) == "" {
		return procrun.Result{}, errors.New("archive path required")
	}
	result, err := c.runner.Run(ctx, c.binary, ExtractArgs(archive, destRoot, filter)...)
	if err != nil {
		return result, fmt.Errorf("unrealpak extract %s: %w", archive, err)
	}
	return result, nil
}

// ExtractArgs builds the argument list for one extraction.
func ExtractArgs(archive, destRoot, filter string) []string {
	args := []string{archive}
	if filter = strings.TrimSpace(filter); filter != "" {
		args = append(args, "-Filter="+filter)
	}
	return append(args, "-Extract", destRoot, "-extracttomountpoint")
}
