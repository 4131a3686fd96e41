package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"wwisex/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Tool names are left bare so tests inject runners instead of real binaries.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ExtractRoot = filepath.Join(base, "game")
	cfgVal.Paths.MountPoint = "Content"
	cfgVal.Paths.SourceAudioDir = filepath.Join(base, "game", "Content", "WwiseAudio", "Windows")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LedgerPath = filepath.Join(base, "ExtractedAudio.json")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Tools.ArchiveExtractor = "UnrealPak"
	cfgVal.Tools.BankExtractor = "bnkextr"
	cfgVal.Tools.OggConverter = "ww2ogg"
	cfgVal.Tools.Codebooks = filepath.Join(base, "packed_codebooks_aoTuV_603.bin")
	cfgVal.Tools.OggRepacker = "revorb"
	cfgVal.Extraction.Workers = 2
	cfgVal.Transcode.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithArchives sets the archive inputs, creating empty files for each name
// under the temp directory.
func WithArchives(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.ArchiveInputs = nil
		for _, name := range names {
			path := filepath.Join(b.baseDir, "archives", name)
			WriteFile(b.t, path, 1)
			b.cfg.Paths.ArchiveInputs = append(b.cfg.Paths.ArchiveInputs, path)
		}
	}
}

// WithFilters overrides the archive extraction filters.
func WithFilters(filters ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.Filters = append([]string(nil), filters...)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the four external tools are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"UnrealPak", "bnkextr", "ww2ogg", "revorb"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
