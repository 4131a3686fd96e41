package config

import (
	"path/filepath"
	"runtime"
)

const (
	defaultConfigPath      = "~/.config/wwisex/config.toml"
	defaultExtractRoot     = "."
	defaultSourceAudioDir  = "WwiseAudio/Windows"
	defaultOutputDir       = "Output"
	defaultUnknownAudioDir = "Wwise Unknown Audio"
	defaultManifestName    = "SoundbanksInfo.xml"
	defaultLedgerPath      = "ExtractedAudio.json"
	defaultStateDir        = "~/.local/share/wwisex"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultCodebooksName   = "packed_codebooks_aoTuV_603.bin"
)

// projectConfigNames are checked in the working directory before the default
// location. config.json is the file earlier releases created on first run.
var projectConfigNames = []string{"wwisex.toml", "config.json"}

var defaultFilters = []string{"*.bnk", "*.wem", "*.xml"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	workers := defaultWorkers()
	return Config{
		Paths: Paths{
			ExtractRoot:     defaultExtractRoot,
			SourceAudioDir:  defaultSourceAudioDir,
			OutputDir:       defaultOutputDir,
			UnknownAudioDir: defaultUnknownAudioDir,
			ManifestName:    defaultManifestName,
			LedgerPath:      defaultLedgerPath,
			StateDir:        defaultStateDir,
		},
		Tools: Tools{
			ArchiveExtractor: toolPath("Engine", "Binaries", "Win64", "UnrealPak"),
			BankExtractor:    toolPath("Engine", "bnkextr"),
			OggConverter:     toolPath("Engine", "ww2ogg", "ww2ogg"),
			Codebooks:        filepath.Join("Engine", "ww2ogg", defaultCodebooksName),
			OggRepacker:      toolPath("Engine", "revorb"),
		},
		Extraction: Extraction{
			Filters: append([]string(nil), defaultFilters...),
			Workers: workers,
		},
		Transcode: Transcode{
			Workers: workers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func toolPath(parts ...string) string {
	path := filepath.Join(parts...)
	if runtime.GOOS == "windows" {
		path += ".exe"
	}
	return path
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}
