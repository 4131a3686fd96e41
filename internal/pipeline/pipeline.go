package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"wwisex/internal/config"
	"wwisex/internal/dedup"
	"wwisex/internal/extract"
	"wwisex/internal/history"
	"wwisex/internal/ledger"
	"wwisex/internal/logging"
	"wwisex/internal/manifest"
	"wwisex/internal/preflight"
	"wwisex/internal/procrun"
	"wwisex/internal/services"
	"wwisex/internal/transcode"
)

// ErrLocked indicates another run holds the ledger lock.
var ErrLocked = errors.New("another run is in progress")

// Summary describes a finished run.
type Summary struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Archives      extract.Report
	Banks         extract.Report
	Dedup         dedup.Stats
	Transcode     transcode.Stats
	LedgerPath    string
	LedgerRecords int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunner routes every external tool invocation through runner.
func WithRunner(runner procrun.Runner) Option {
	return func(p *Pipeline) {
		if runner != nil {
			p.runner = runner
		}
	}
}

// WithRecorder overrides where run summaries are stored.
func WithRecorder(recorder history.Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = recorder
	}
}

// WithPreflight replaces the readiness checks run before extraction.
func WithPreflight(check func(*config.Config) []preflight.Result) Option {
	return func(p *Pipeline) {
		if check != nil {
			p.preflight = check
		}
	}
}

// Pipeline wires the stages for one configuration.
type Pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	runner    procrun.Runner
	recorder  history.Recorder
	preflight func(*config.Config) []preflight.Result

	extractor *extract.Extractor
	engine    *dedup.Engine
	stage     *transcode.Stage
}

// New builds a pipeline for cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		preflight: preflight.RunAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = procrun.New(procrun.WithTimeout(cfg.ToolTimeout()))
	}
	if p.recorder == nil {
		p.recorder = storeRecorder{path: cfg.HistoryPath()}
	}

	var err error
	if p.extractor, err = extract.New(cfg, logger, extract.WithRunner(p.runner)); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "extract", "", err)
	}
	if p.stage, err = transcode.New(cfg, logger, transcode.WithRunner(p.runner)); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "transcode", "", err)
	}
	p.engine = dedup.New(cfg, logger)
	return p, nil
}

// Run executes one extraction. The summary is returned even on failure and
// reflects the stages that completed.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	summary := Summary{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now(),
		LedgerPath: p.cfg.Paths.LedgerPath,
	}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("run started",
		logging.Int("archives", len(p.cfg.Paths.ArchiveInputs)),
		logging.String("source_audio_dir", p.cfg.Paths.SourceAudioDir),
		logging.String("output_dir", p.cfg.Paths.OutputDir))

	err := p.execute(ctx, logger, &summary)
	summary.FinishedAt = time.Now()
	p.record(ctx, logger, summary, err)

	if err != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.FailureHint(err)),
			logging.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)))
		return summary, err
	}
	logger.Info("sound extraction completed",
		logging.Int("moved", summary.Dedup.Moved),
		logging.Int("skipped", summary.Dedup.Skipped),
		logging.Int("unknown", summary.Dedup.Unknown),
		logging.Int("converted", summary.Transcode.Converted),
		logging.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)))
	return summary, nil
}

func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, summary *Summary) error {
	cfg := p.cfg

	if failed := preflight.Failed(p.preflight(cfg)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, f := range failed {
			details = append(details, f.Name+": "+f.Detail)
		}
		return services.Wrap(services.ErrConfiguration, "preflight", "", strings.Join(details, "; "), nil)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrFilesystem, "pipeline", "prepare", "", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "pipeline", "lock", "", err)
	}
	if !locked {
		return fmt.Errorf("%w: lock %s is held", ErrLocked, cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	prior, err := ledger.LoadWithError(cfg.Paths.LedgerPath)
	if err != nil {
		logging.WarnWithContext(logger, "ledger unreadable", "ledger_load_failed",
			logging.Error(err),
			logging.String("path", cfg.Paths.LedgerPath),
			logging.String(logging.FieldErrorHint, "the ledger is rewritten at the end of this run"),
			logging.String(logging.FieldImpact, "every media file is treated as new"))
	}
	logger.Debug("ledger loaded", logging.Int("records", prior.Len()))

	if len(cfg.Paths.ArchiveInputs) > 0 {
		report, err := p.extractor.ExtractArchives(logging.WithStage(ctx, "archives"), cfg.Paths.ArchiveInputs)
		summary.Archives = report
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "extract", "archives", "", err)
		}
	} else {
		logger.Info("no archives configured; using existing source tree",
			logging.String("source_audio_dir", cfg.Paths.SourceAudioDir))
	}

	m, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		if errors.Is(err, manifest.ErrNoManifest) {
			return services.Wrap(services.ErrNotFound, "manifest", "load", "", err)
		}
		return services.Wrap(services.ErrValidation, "manifest", "parse", "", err)
	}
	bankCount, fileCount := m.Counts()
	logger.Info("manifest parsed",
		logging.String("path", cfg.ManifestPath()),
		logging.Int("banks", bankCount),
		logging.Int("files", fileCount))

	report, err := p.extractor.ExtractBanks(logging.WithStage(ctx, "banks"), m.Banks())
	summary.Banks = report
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "extract", "banks", "", err)
	}

	dedupCtx := logging.WithStage(ctx, "dedup")
	next, stats, err := p.engine.Process(dedupCtx, m.Files(), prior)
	summary.Dedup = stats
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "dedup", "move", "", err)
	}
	if err := p.engine.EnsureUnknownDir(); err != nil {
		return services.Wrap(services.ErrFilesystem, "dedup", "unknown", "", err)
	}
	unknown, err := p.engine.MoveUnknown(dedupCtx)
	summary.Dedup.Unknown = len(unknown)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "dedup", "unknown", "", err)
	}

	tstats, err := p.stage.Run(logging.WithStage(ctx, "transcode"), cfg.Paths.OutputDir)
	summary.Transcode = tstats
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcode", "", "", err)
	}

	if err := ledger.Save(cfg.Paths.LedgerPath, next); err != nil {
		return services.Wrap(services.ErrFilesystem, "ledger", "save", "", err)
	}
	summary.LedgerRecords = next.Len()
	logger.Info("ledger written",
		logging.String("path", cfg.Paths.LedgerPath),
		logging.Int("records", next.Len()))

	p.cleanupMount(logger)
	return nil
}

// cleanupMount removes the directory UnrealPak extracted into. It never
// removes a tree that contains the output directory or the ledger.
func (p *Pipeline) cleanupMount(logger *slog.Logger) {
	mount := p.cfg.MountDir()
	if mount == "" || len(p.cfg.Paths.ArchiveInputs) == 0 {
		return
	}
	for _, keep := range []string{p.cfg.Paths.OutputDir, p.cfg.Paths.LedgerPath} {
		if within(keep, mount) {
			logging.WarnWithContext(logger, "mount cleanup skipped", "mount_cleanup_skipped",
				logging.String("mount_dir", mount),
				logging.String("contains", keep),
				logging.String(logging.FieldErrorHint, "move output_dir and ledger_path outside the mount point"),
				logging.String(logging.FieldImpact, "extracted archive contents remain on disk"))
			return
		}
	}
	if err := os.RemoveAll(mount); err != nil {
		logging.WarnWithContext(logger, "mount cleanup failed", "mount_cleanup_failed",
			logging.String("mount_dir", mount),
			logging.Error(err),
			logging.String(logging.FieldImpact, "extracted archive contents remain on disk"))
		return
	}
	logger.Debug("mount directory removed", logging.String("mount_dir", mount))
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, summary Summary, runErr error) {
	if p.recorder == nil {
		return
	}
	run := history.Run{
		ID:            summary.RunID,
		StartedAt:     summary.StartedAt,
		FinishedAt:    summary.FinishedAt,
		Status:        services.FailureStatus(runErr),
		Entries:       summary.Dedup.Entries,
		Moved:         summary.Dedup.Moved,
		Skipped:       summary.Dedup.Skipped,
		Duplicates:    summary.Dedup.Duplicates,
		Unknown:       summary.Dedup.Unknown,
		Transcoded:    summary.Transcode.Converted,
		Failed:        summary.Archives.Failed + summary.Banks.Failed + summary.Transcode.Failed,
		LedgerRecords: summary.LedgerRecords,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := p.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("failed to record run history", logging.Error(err))
	}
}

// storeRecorder opens the history database for each record.
type storeRecorder struct {
	path string
}

func (r storeRecorder) Record(ctx context.Context, run history.Run) error {
	store, err := history.Open(r.path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(ctx, run)
}
