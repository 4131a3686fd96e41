package dedup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"wwisex/internal/config"
	"wwisex/internal/fileutil"
	"wwisex/internal/ledger"
	"wwisex/internal/logging"
	"wwisex/internal/manifest"
	"wwisex/internal/services/ww2ogg"
)

// Stats counts what Process and MoveUnknown did.
type Stats struct {
	Entries    int
	Moved      int
	Skipped    int
	Duplicates int
	Unknown    int
}

// Decision is the outcome of comparing an entry with the previous ledger.
type Decision struct {
	Move   bool
	Reason string
}

// Decide applies the skip rule: media is skipped only when the previous run
// recorded the same hash for the path and the converted .ogg is still present.
func Decide(prior ledger.Record, known bool, hash string, oggExists bool) Decision {
	switch {
	case !known:
		return Decision{Move: true, Reason: "not in ledger"}
	case prior.FileHash != hash:
		return Decision{Move: true, Reason: "content changed"}
	case !oggExists:
		return Decision{Move: true, Reason: "converted output missing"}
	default:
		return Decision{Move: false, Reason: "unchanged"}
	}
}

// Engine moves manifest-named media from the source tree to the output tree.
type Engine struct {
	sourceRoot string
	outputRoot string
	unknownDir string
	logger     *slog.Logger
}

// New builds an engine for cfg.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{
		sourceRoot: cfg.Paths.SourceAudioDir,
		outputRoot: cfg.Paths.OutputDir,
		unknownDir: cfg.UnknownAudioPath(),
		logger:     logging.NewComponentLogger(logger, "dedup"),
	}
}

// SourcePath returns where bnkextr left the media for entry.
func (e *Engine) SourcePath(entry manifest.Entry) string {
	return filepath.Join(e.sourceRoot, entry.LanguageDir(), entry.SourceName())
}

// DestinationPath returns where the media for a canonical path is moved to.
func (e *Engine) DestinationPath(canonical string) string {
	return filepath.Join(e.outputRoot, manifest.LocalPath(canonical))
}

// Process walks entries in order and returns the ledger for this run. The
// prior ledger is only read. An unreadable source or failed move aborts the
// run; the returned ledger is nil in that case.
func (e *Engine) Process(ctx context.Context, entries iter.Seq[manifest.Entry], prior *ledger.Ledger) (*ledger.Ledger, Stats, error) {
	logger := logging.WithContext(ctx, e.logger)
	next := ledger.New()
	seen := make(map[string]struct{})
	var stats Stats

	for entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.Entries++

		canonical := entry.CanonicalPath()
		source := e.SourcePath(entry)

		if _, dup := seen[canonical]; dup {
			if err := fileutil.RemoveIfExists(source); err != nil {
				return nil, stats, fmt.Errorf("remove duplicate %s: %w", source, err)
			}
			stats.Duplicates++
			logger.Debug("duplicate manifest entry discarded",
				logging.String("id", entry.ID),
				logging.String("path", canonical))
			continue
		}

		hash, err := fileutil.HashFile(source)
		if err != nil {
			return nil, stats, fmt.Errorf("hash media %s for %s: %w", entry.ID, canonical, err)
		}

		dest := e.DestinationPath(canonical)
		record, known := prior.Lookup(canonical)
		decision := Decide(record, known, hash, fileutil.Exists(ww2ogg.OggPath(dest)))

		if decision.Move {
			if err := fileutil.MoveFile(source, dest); err != nil {
				return nil, stats, fmt.Errorf("move %s to %s: %w", source, dest, err)
			}
			stats.Moved++
			logger.Info("moved media",
				logging.Args(append(logging.DecisionAttrs("dedup", "move", decision.Reason),
					logging.String("id", entry.ID),
					logging.String("path", canonical))...)...)
		} else {
			stats.Skipped++
			logger.Debug("skipped unchanged media",
				logging.Args(append(logging.DecisionAttrs("dedup", "skip", decision.Reason),
					logging.String("id", entry.ID),
					logging.String("path", canonical))...)...)
		}

		if err := fileutil.RemoveIfExists(source); err != nil {
			return nil, stats, fmt.Errorf("remove source %s: %w", source, err)
		}
		seen[canonical] = struct{}{}
		next.Add(ledger.Record{FileID: entry.ID, FilePath: canonical, FileHash: hash})
	}

	logger.Info("media deduplicated",
		logging.Int("entries", stats.Entries),
		logging.Int("moved", stats.Moved),
		logging.Int("skipped", stats.Skipped),
		logging.Int("duplicates", stats.Duplicates))
	return next, stats, nil
}

// MoveUnknown relocates every .wem still under the source root into the
// unknown-audio folder, flattening directories. Moved files are returned by
// their new paths. A missing source root moves nothing.
func (e *Engine) MoveUnknown(ctx context.Context) ([]string, error) {
	logger := logging.WithContext(ctx, e.logger)

	var moved []string
	origins := make(map[string]string)
	err := filepath.WalkDir(e.sourceRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == e.sourceRoot && errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path == e.unknownDir || path == e.outputRoot {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".wem") {
			return nil
		}

		dest := filepath.Join(e.unknownDir, d.Name())
		if prev, taken := origins[dest]; taken {
			logging.WarnWithContext(logger, "unknown media name collision", "unknown_media_collision",
				logging.String("file", d.Name()),
				logging.String("kept", path),
				logging.String("replaced", prev),
				logging.String(logging.FieldImpact, "the earlier file with this name is overwritten"))
		}
		if err := fileutil.MoveFile(path, dest); err != nil {
			return fmt.Errorf("move unknown media %s: %w", path, err)
		}
		if _, taken := origins[dest]; !taken {
			moved = append(moved, dest)
		}
		origins[dest] = path
		logger.Debug("moved unknown media", logging.String("file", d.Name()))
		return nil
	})
	if err != nil {
		return moved, err
	}

	if len(moved) > 0 {
		logger.Info("relocated media missing from manifest",
			logging.Int("files", len(moved)),
			logging.String("folder", e.unknownDir))
	}
	return moved, nil
}

// EnsureUnknownDir creates the unknown-audio folder.
func (e *Engine) EnsureUnknownDir() error {
	if err := os.MkdirAll(e.unknownDir, 0o755); err != nil {
		return fmt.Errorf("create unknown audio folder: %w", err)
	}
	return nil
}
