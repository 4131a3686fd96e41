package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories and files a run reads from and writes to.
type Paths struct {
	ArchiveInputs   []string `toml:"archive_inputs"`
	MountPoint      string   `toml:"mount_point"`
	ExtractRoot     string   `toml:"extract_root"`
	SourceAudioDir  string   `toml:"source_audio_dir"`
	OutputDir       string   `toml:"output_dir"`
	UnknownAudioDir string   `toml:"unknown_audio_dir"`
	ManifestName    string   `toml:"manifest_name"`
	LedgerPath      string   `toml:"ledger_path"`
	StateDir        string   `toml:"state_dir"`
}

// Tools contains the external executables the pipeline drives.
type Tools struct {
	ArchiveExtractor string `toml:"archive_extractor"`
	BankExtractor    string `toml:"bank_extractor"`
	OggConverter     string `toml:"ogg_converter"`
	Codebooks        string `toml:"codebooks"`
	OggRepacker      string `toml:"ogg_repacker"`
	// TimeoutSeconds bounds a single tool invocation. Zero waits forever.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Extraction controls archive and bank extraction.
type Extraction struct {
	Filters    []string `toml:"filters"`
	Unfiltered bool     `toml:"unfiltered"`
	Workers    int      `toml:"workers"`
}

// Transcode controls the ww2ogg/revorb fan-out.
type Transcode struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for wwisex.
//
// Configuration sections by subsystem:
//   - Paths: archive inputs, extraction/source/output directories, ledger and state
//   - Tools: UnrealPak, bnkextr, ww2ogg (+ codebooks) and revorb locations
//   - Extraction: archive filters and worker limit
//   - Transcode: worker limit for ww2ogg/revorb
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Tools      Tools      `toml:"tools"`
	Extraction Extraction `toml:"extraction"`
	Transcode  Transcode  `toml:"transcode"`
	Logging    Logging    `toml:"logging"`
}

// legacyFile is the flat JSON object written by earlier releases. Both the
// camelCase keys and the original Pak* keys are accepted.
type legacyFile struct {
	ArchiveInputPaths    []string `json:"archiveInputPaths,omitempty"`
	ArchiveMountPoint    string   `json:"archiveMountPoint,omitempty"`
	SourceAudioDirectory string   `json:"sourceAudioDirectory,omitempty"`
	OutputDirectory      string   `json:"outputDirectory,omitempty"`

	PakFilePaths          []string `json:"PakFilePaths,omitempty"`
	PakMountPoint         string   `json:"PakMountPoint,omitempty"`
	WwiseDirectory        string   `json:"WwiseDirectory,omitempty"`
	LegacyOutputDirectory string   `json:"OutputDirectory,omitempty"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	var provider Provider = DefaultsProvider{}
	if exists {
		provider = FileProvider{Path: resolvedPath}
	}
	cfg, err := provider.Provide()
	if err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	for _, name := range projectConfigNames {
		projectPath, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
			return projectPath, true, nil
		}
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if isJSONPath(path) {
		var legacy legacyFile
		if err := json.NewDecoder(file).Decode(&legacy); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
		legacy.apply(cfg)
		return nil
	}

	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (l legacyFile) apply(cfg *Config) {
	inputs := l.ArchiveInputPaths
	if len(inputs) == 0 {
		inputs = l.PakFilePaths
	}
	if len(inputs) > 0 {
		cfg.Paths.ArchiveInputs = inputs
	}
	if v := firstNonEmpty(l.ArchiveMountPoint, l.PakMountPoint); v != "" {
		cfg.Paths.MountPoint = v
	}
	if v := firstNonEmpty(l.SourceAudioDirectory, l.WwiseDirectory); v != "" {
		cfg.Paths.SourceAudioDir = v
	}
	if v := firstNonEmpty(l.OutputDirectory, l.LegacyOutputDirectory); v != "" {
		cfg.Paths.OutputDir = v
	}
}

// Write persists cfg to path, as the legacy JSON object when path ends in
// .json and as TOML otherwise.
func Write(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	var (
		data []byte
		err  error
	)
	if isJSONPath(path) {
		data, err = json.MarshalIndent(legacyFile{
			ArchiveInputPaths:    cfg.Paths.ArchiveInputs,
			ArchiveMountPoint:    cfg.Paths.MountPoint,
			SourceAudioDirectory: cfg.Paths.SourceAudioDir,
			OutputDirectory:      cfg.Paths.OutputDir,
		}, "", "  ")
	} else {
		data, err = toml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir, c.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.LedgerPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory %q: %w", dir, err)
		}
	}
	return nil
}

// MountDir returns the directory UnrealPak populates for the configured mount
// point, or "" when no mount point is configured.
func (c *Config) MountDir() string {
	mount := strings.TrimSpace(c.Paths.MountPoint)
	if mount == "" {
		return ""
	}
	if filepath.IsAbs(mount) {
		return filepath.Clean(mount)
	}
	return filepath.Join(c.Paths.ExtractRoot, mount)
}

// ManifestPath returns the SoundbanksInfo manifest location inside the source root.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.SourceAudioDir, c.Paths.ManifestName)
}

// UnknownAudioPath returns the output folder for audio not named by the manifest.
func (c *Config) UnknownAudioPath() string {
	return filepath.Join(c.Paths.OutputDir, c.Paths.UnknownAudioDir)
}

// LogDir returns the directory holding wwisex log files.
func (c *Config) LogDir() string {
	return filepath.Join(c.Paths.StateDir, "logs")
}

// HistoryPath returns the SQLite database recording past runs.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// ToolTimeout returns the per-invocation bound for external tools, or zero
// when tools may run indefinitely.
func (c *Config) ToolTimeout() time.Duration {
	if c.Tools.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Tools.TimeoutSeconds) * time.Second
}

// LockPath returns the run lock guarding the ledger.
func (c *Config) LockPath() string {
	return c.Paths.LedgerPath + ".lock"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
