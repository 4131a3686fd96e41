package revorb

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

// Client wraps revorb, which rewrites Ogg granule positions in place.
type Client struct {
	binary string
	runner procrun.Runner
}

// New constructs a revorb client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("revorb binary required")
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

// Repack fixes up ogg in place.
func (c *Client) Repack(ctx context.Context, ogg string) (procrun.Result, error) {
	if strings.TrimSpace(ogg) == "" {
		return procrun.Result{}, errors.New("ogg path required")
	}
	result, err := c.runner.Run(ctx, c.binary, ogg)
	if err != nil {
		return result, fmt.Errorf("revorb %s: %w", ogg, err)
	}
	return result, nil
}
