package ww2ogg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
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

// Client wraps ww2ogg, which converts Wwise .wem containers to Ogg Vorbis.
type Client struct {
	binary    string
	codebooks string
	runner    procrun.Runner
}

// New constructs a ww2ogg client using the packed codebook file at codebooks.
func New(binary, codebooks string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ww2ogg binary required")
	}
	codebooks = strings.TrimSpace(codebooks)
	if codebooks == "" {
		return nil, errors.New("ww2ogg codebooks required")
	}
	client := &Client{binary: binary, codebooks: codebooks, runner: procrun.New()}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

// Convert writes <wem without extension>.ogg next to wem and returns that
// path. The .ogg may be missing even on success for unsupported codecs.
func (c *Client) Convert(ctx context.Context, wem string) (string, procrun.Result, error) {
	if strings.TrimSpace(wem) == "" {
		return "", procrun.Result{}, errors.New("wem path required")
	}
	result, err := c.runner.Run(ctx, c.binary, wem, "--pcb", c.codebooks)
	if err != nil {
		return "", result, fmt.Errorf("ww2ogg %s: %w", wem, err)
	}
	return OggPath(wem), result, nil
}

// OggPath returns the file ww2ogg produces for wem.
func OggPath(wem string) string {
	return strings.TrimSuffix(wem, filepath.Ext(wem)) + ".ogg"
}
