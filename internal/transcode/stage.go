package transcode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"wwisex/internal/config"
	"wwisex/internal/deps"
	"wwisex/internal/fileutil"
	"wwisex/internal/logging"
	"wwisex/internal/procrun"
	"wwisex/internal/services/revorb"
	"wwisex/internal/services/ww2ogg"
	"wwisex/internal/workpool"
)

// Stats counts the work done by one Run.
type Stats struct {
	Files     int
	Converted int
	Repacked  int
	Failed    int
}

// Option configures the stage.
type Option func(*options)

type options struct {
	runner procrun.Runner
}

// WithRunner routes every tool invocation through runner.
func WithRunner(runner procrun.Runner) Option {
	return func(o *options) {
		o.runner = runner
	}
}

// Stage drives ww2ogg and revorb over an output tree.
type Stage struct {
	converter *ww2ogg.Client
	repacker  *revorb.Client
	workers   int
	logger    *slog.Logger
}

// New builds a stage from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Stage, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.runner == nil {
		o.runner = procrun.New(procrun.WithTimeout(cfg.ToolTimeout()))
	}

	// Use the same codebook file preflight approved, which may be the copy
	// shipped next to the ww2ogg binary.
	codebooks, _ := deps.ResolveCodebooks(cfg.Tools.OggConverter, cfg.Tools.Codebooks)
	converter, err := ww2ogg.New(cfg.Tools.OggConverter, codebooks, ww2ogg.WithRunner(o.runner))
	if err != nil {
		return nil, err
	}
	repacker, err := revorb.New(cfg.Tools.OggRepacker, revorb.WithRunner(o.runner))
	if err != nil {
		return nil, err
	}
	return &Stage{
		converter: converter,
		repacker:  repacker,
		workers:   cfg.Transcode.Workers,
		logger:    logging.NewComponentLogger(logger, "transcode"),
	}, nil
}

// Run converts every .wem under outputRoot. Per-file failures are logged and
// counted; a missing tool stops the stage and leaves unconverted .wem files
// in place.
func (s *Stage) Run(ctx context.Context, outputRoot string) (Stats, error) {
	logger := logging.WithContext(ctx, s.logger)

	files, err := collectMedia(outputRoot)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Files: len(files)}
	if len(files) == 0 {
		logger.Info("no media to transcode", logging.String("output_dir", outputRoot))
		return stats, nil
	}
	logger.Info("transcode started",
		logging.Int("files", len(files)),
		logging.Int("workers", s.workers))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var converted, repacked atomic.Int64
	outcomes := workpool.Run(runCtx, s.workers, files, func(ctx context.Context, wem string) error {
		err := s.convertOne(ctx, logger, wem, &converted, &repacked)
		if errors.Is(err, procrun.ErrToolNotFound) {
			cancel()
		}
		return err
	})

	stats.Converted = int(converted.Load())
	stats.Repacked = int(repacked.Load())
	failed := workpool.Failures(outcomes)
	stats.Failed = len(failed)
	var fatal error
	for _, o := range failed {
		if errors.Is(o.Err, procrun.ErrToolNotFound) {
			fatal = o.Err
			break
		}
	}
	if fatal != nil {
		return stats, fmt.Errorf("transcode: %w", fatal)
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	logger.Info("transcode completed",
		logging.Int("files", stats.Files),
		logging.Int("converted", stats.Converted),
		logging.Int("repacked", stats.Repacked),
		logging.Int("failed", stats.Failed))
	return stats, nil
}

func (s *Stage) convertOne(ctx context.Context, logger *slog.Logger, wem string, converted, repacked *atomic.Int64) error {
	_, result, convErr := s.converter.Convert(ctx, wem)
	if errors.Is(convErr, procrun.ErrToolNotFound) || ctx.Err() != nil {
		return convErr
	}
	if convErr != nil {
		logging.WarnWithContext(logger, "conversion failed", "transcode_convert_failed",
			append(result.LogAttrs(),
				logging.String("file", wem),
				logging.Error(convErr),
				logging.String(logging.FieldImpact, "no ogg produced for this file"))...)
	} else {
		converted.Add(1)
	}

	var repackErr error
	if ogg := ww2ogg.OggPath(wem); fileutil.Exists(ogg) {
		var repackResult procrun.Result
		repackResult, repackErr = s.repacker.Repack(ctx, ogg)
		if errors.Is(repackErr, procrun.ErrToolNotFound) || ctx.Err() != nil {
			return repackErr
		}
		if repackErr != nil {
			logging.WarnWithContext(logger, "repack failed", "transcode_repack_failed",
				append(repackResult.LogAttrs(),
					logging.String("file", ogg),
					logging.Error(repackErr),
					logging.String(logging.FieldImpact, "ogg kept without repacking"))...)
		} else {
			repacked.Add(1)
		}
	}

	if err := fileutil.RemoveIfExists(wem); err != nil {
		return fmt.Errorf("remove %s: %w", wem, err)
	}
	return errors.Join(convErr, repackErr)
}

func collectMedia(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root && errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return walkErr
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".wem") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan output directory: %w", err)
	}
	return files, nil
}
