package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceAudioDir) == "" {
		return errors.New("paths.source_audio_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if filepath.Clean(c.Paths.SourceAudioDir) == filepath.Clean(c.Paths.OutputDir) {
		return errors.New("paths.output_dir must differ from paths.source_audio_dir")
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		return errors.New("paths.ledger_path must be set")
	}
	if name := c.Paths.UnknownAudioDir; strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("paths.unknown_audio_dir must be a plain folder name, got %q", name)
	}
	if mount := c.Paths.MountPoint; mount != "" && !filepath.IsAbs(mount) {
		for _, part := range strings.Split(filepath.ToSlash(mount), "/") {
			if part == ".." || part == "." {
				return fmt.Errorf("paths.mount_point %q must not contain . or .. segments", mount)
			}
		}
	}
	return nil
}

func (c *Config) validateTools() error {
	required := map[string]string{
		"tools.archive_extractor": c.Tools.ArchiveExtractor,
		"tools.bank_extractor":    c.Tools.BankExtractor,
		"tools.ogg_converter":     c.Tools.OggConverter,
		"tools.codebooks":         c.Tools.Codebooks,
		"tools.ogg_repacker":      c.Tools.OggRepacker,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	if c.Tools.TimeoutSeconds < 0 {
		return errors.New("tools.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	return ensurePositiveMap(map[string]int{
		"extraction.workers": c.Extraction.Workers,
		"transcode.workers":  c.Transcode.Workers,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
