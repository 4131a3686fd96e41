package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Provider supplies the configuration for a run. Every provider returns a
// normalized, validated Config.
type Provider interface {
	Provide() (*Config, error)
}

// FileProvider reads configuration from an existing file.
type FileProvider struct {
	Path string
}

// Provide implements Provider.
func (p FileProvider) Provide() (*Config, error) {
	if strings.TrimSpace(p.Path) == "" {
		return nil, errors.New("config path required")
	}
	cfg := Default()
	if err := decodeFile(p.Path, &cfg); err != nil {
		return nil, err
	}
	return finish(cfg)
}

// DefaultsProvider returns repository defaults.
type DefaultsProvider struct{}

// Provide implements Provider.
func (DefaultsProvider) Provide() (*Config, error) {
	return finish(Default())
}

// PromptProvider asks for the essential values on first run and saves the
// answers to SavePath so later runs use FileProvider.
type PromptProvider struct {
	In       io.Reader
	Out      io.Writer
	SavePath string
}

// Provide implements Provider.
func (p PromptProvider) Provide() (*Config, error) {
	if p.In == nil || p.Out == nil {
		return nil, errors.New("prompt provider requires input and output")
	}
	scanner := bufio.NewScanner(p.In)
	ask := func(question string) (string, error) {
		fmt.Fprintln(p.Out, question)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read answer: %w", err)
			}
			return "", nil
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	fmt.Fprintln(p.Out, "First-time setup: provide default values for extraction.")

	cfg := Default()
	answer, err := ask("Enter archive file paths (comma-separated):")
	if err != nil {
		return nil, err
	}
	cfg.Paths.ArchiveInputs = splitList(answer)

	if cfg.Paths.MountPoint, err = ask(`Enter archive mount point (ex. "DeadByDaylight"):`); err != nil {
		return nil, err
	}
	if answer, err = ask(`Enter WwiseAudio directory (ex. "DeadByDaylight/Content/WwiseAudio/Windows"):`); err != nil {
		return nil, err
	}
	if answer != "" {
		cfg.Paths.SourceAudioDir = answer
	}
	if answer, err = ask("Enter output directory:"); err != nil {
		return nil, err
	}
	if answer != "" {
		cfg.Paths.OutputDir = answer
	}

	if strings.TrimSpace(p.SavePath) != "" {
		if err := Write(p.SavePath, &cfg); err != nil {
			return nil, err
		}
		fmt.Fprintf(p.Out, "Saved configuration to %s. You can modify it later.\n", p.SavePath)
	}
	return finish(cfg)
}

// Resolve picks a provider for path: the file when it exists, interactive
// prompts when allowed, and defaults otherwise.
func Resolve(path string, interactive bool, in io.Reader, out io.Writer) (*Config, string, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}
	var provider Provider
	switch {
	case exists:
		provider = FileProvider{Path: resolvedPath}
	case interactive:
		provider = PromptProvider{In: in, Out: out, SavePath: resolvedPath}
	default:
		provider = DefaultsProvider{}
	}
	cfg, err := provider.Provide()
	if err != nil {
		return nil, "", err
	}
	return cfg, resolvedPath, nil
}

func finish(cfg Config) (*Config, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
