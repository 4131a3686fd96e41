package bnkextr

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

// Client wraps the bnkextr sound bank extractor.
type Client struct {
	binary string
	runner procrun.Runner
}

// New constructs a bnkextr client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("bnkextr binary required")
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

// Extract writes the embedded .wem files of bank next to the bank file,
// named by their numeric ids.
func (c *Client) Extract(ctx context.Context, bank string) (procrun.Result, error) {
	if strings.TrimSpace(bank) == "" {
		return procrun.Result{}, errors.New("bank path required")
	}
	result, err := c.runner.Run(ctx, c.binary, bank, "/nodir")
	if err != nil {
		return result, fmt.Errorf("bnkextr %s: %w", bank, err)
	}
	return result, nil
}
