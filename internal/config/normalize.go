package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeTranscode()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	inputs := make([]string, 0, len(c.Paths.ArchiveInputs))
	seen := make(map[string]struct{}, len(c.Paths.ArchiveInputs))
	for _, input := range c.Paths.ArchiveInputs {
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("paths.archive_inputs: %w", err)
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		inputs = append(inputs, expanded)
	}
	c.Paths.ArchiveInputs = inputs

	c.Paths.MountPoint = strings.TrimSpace(c.Paths.MountPoint)
	if c.Paths.MountPoint != "" {
		c.Paths.MountPoint = filepath.Clean(c.Paths.MountPoint)
	}

	defaults := map[*string]string{
		&c.Paths.ExtractRoot:     defaultExtractRoot,
		&c.Paths.SourceAudioDir:  defaultSourceAudioDir,
		&c.Paths.OutputDir:       defaultOutputDir,
		&c.Paths.UnknownAudioDir: defaultUnknownAudioDir,
		&c.Paths.ManifestName:    defaultManifestName,
		&c.Paths.LedgerPath:      defaultLedgerPath,
		&c.Paths.StateDir:        defaultStateDir,
	}
	for field, fallback := range defaults {
		*field = strings.TrimSpace(*field)
		if *field == "" {
			*field = fallback
		}
	}

	var err error
	if c.Paths.ExtractRoot, err = expandPath(c.Paths.ExtractRoot); err != nil {
		return fmt.Errorf("paths.extract_root: %w", err)
	}
	if c.Paths.SourceAudioDir, err = expandPath(c.Paths.SourceAudioDir); err != nil {
		return fmt.Errorf("paths.source_audio_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() error {
	defaults := Default().Tools
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"tools.archive_extractor", &c.Tools.ArchiveExtractor, defaults.ArchiveExtractor},
		{"tools.bank_extractor", &c.Tools.BankExtractor, defaults.BankExtractor},
		{"tools.ogg_converter", &c.Tools.OggConverter, defaults.OggConverter},
		{"tools.codebooks", &c.Tools.Codebooks, defaults.Codebooks},
		{"tools.ogg_repacker", &c.Tools.OggRepacker, defaults.OggRepacker},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			*f.value = f.fallback
		}
		// Bare command names are resolved through PATH; anything that looks
		// like a path is anchored to the working directory.
		if !strings.ContainsAny(*f.value, `/\`) {
			continue
		}
		expanded, err := expandPath(*f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	if c.Tools.TimeoutSeconds < 0 {
		c.Tools.TimeoutSeconds = 0
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	filters := make([]string, 0, len(c.Extraction.Filters))
	for _, filter := range c.Extraction.Filters {
		if trimmed := strings.TrimSpace(filter); trimmed != "" {
			filters = append(filters, trimmed)
		}
	}
	if len(filters) == 0 && !c.Extraction.Unfiltered {
		filters = append(filters, defaultFilters...)
	}
	if c.Extraction.Unfiltered {
		filters = nil
	}
	c.Extraction.Filters = filters
	if c.Extraction.Workers <= 0 {
		c.Extraction.Workers = defaultWorkers()
	}
}

func (c *Config) normalizeTranscode() {
	if c.Transcode.Workers <= 0 {
		c.Transcode.Workers = defaultWorkers()
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
