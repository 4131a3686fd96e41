package extract

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"

	"wwisex/internal/config"
	"wwisex/internal/logging"
	"wwisex/internal/manifest"
	"wwisex/internal/procrun"
	"wwisex/internal/services/bnkextr"
	"wwisex/internal/services/unrealpak"
	"wwisex/internal/workpool"
)

// Job is one tool invocation.
type Job struct {
	// Target is the archive or bank the tool is pointed at.
	Target string
	// Filter is the archive glob; empty for bank jobs and unfiltered archives.
	Filter string
}

// Report summarizes one extraction stage.
type Report struct {
	Jobs     int
	Failed   int
	Outcomes []workpool.Outcome[Job]
}

// Option configures the extractor.
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

// Extractor runs the archive and bank extraction stages.
type Extractor struct {
	archives    *unrealpak.Client
	banks       *bnkextr.Client
	extractRoot string
	sourceRoot  string
	filters     []string
	workers     int
	logger      *slog.Logger
}

// New builds an extractor from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Extractor, error) {
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

	archives, err := unrealpak.New(cfg.Tools.ArchiveExtractor, unrealpak.WithRunner(o.runner))
	if err != nil {
		return nil, err
	}
	banks, err := bnkextr.New(cfg.Tools.BankExtractor, bnkextr.WithRunner(o.runner))
	if err != nil {
		return nil, err
	}

	return &Extractor{
		archives:    archives,
		banks:       banks,
		extractRoot: cfg.Paths.ExtractRoot,
		sourceRoot:  cfg.Paths.SourceAudioDir,
		filters:     append([]string(nil), cfg.Extraction.Filters...),
		workers:     cfg.Extraction.Workers,
		logger:      logging.NewComponentLogger(logger, "extract"),
	}, nil
}

// ArchiveJobs expands archives into one job per configured filter, or a
// single unfiltered job per archive when no filters are configured.
func (e *Extractor) ArchiveJobs(archives []string) []Job {
	var jobs []Job
	for _, archive := range archives {
		if len(e.filters) == 0 {
			jobs = append(jobs, Job{Target: archive})
			continue
		}
		for _, filter := range e.filters {
			jobs = append(jobs, Job{Target: archive, Filter: filter})
		}
	}
	return jobs
}

// ExtractArchives unpacks every archive into the extract root.
func (e *Extractor) ExtractArchives(ctx context.Context, archives []string) (Report, error) {
	jobs := e.ArchiveJobs(archives)
	return e.run(ctx, "archive", jobs, func(ctx context.Context, job Job) (procrun.Result, error) {
		return e.archives.Extract(ctx, job.Target, e.extractRoot, job.Filter)
	})
}

// BankJobs resolves each bank path against the source audio directory.
func (e *Extractor) BankJobs(banks iter.Seq[manifest.Bank]) []Job {
	var jobs []Job
	for bank := range banks {
		jobs = append(jobs, Job{Target: filepath.Join(e.sourceRoot, manifest.LocalPath(bank.Path))})
	}
	return jobs
}

// ExtractBanks splits every bank into .wem files next to the bank.
func (e *Extractor) ExtractBanks(ctx context.Context, banks iter.Seq[manifest.Bank]) (Report, error) {
	jobs := e.BankJobs(banks)
	return e.run(ctx, "bank", jobs, func(ctx context.Context, job Job) (procrun.Result, error) {
		return e.banks.Extract(ctx, job.Target)
	})
}

func (e *Extractor) run(ctx context.Context, kind string, jobs []Job, invoke func(context.Context, Job) (procrun.Result, error)) (Report, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := logging.WithContext(ctx, e.logger)
	logger.Info("extraction started",
		logging.String("kind", kind),
		logging.Int("jobs", len(jobs)),
		logging.Int("workers", e.workers))

	var fatal error
	outcomes := workpool.Run(runCtx, e.workers, jobs, func(ctx context.Context, job Job) error {
		result, err := invoke(ctx, job)
		switch {
		case err == nil:
			logger.Debug("extraction job finished", logging.Args(append(result.LogAttrs(), logging.String("target", job.Target))...)...)
		case errors.Is(err, procrun.ErrToolNotFound):
			cancel()
		default:
			attrs := append(result.LogAttrs(),
				logging.String("target", job.Target),
				logging.String("filter", job.Filter),
				logging.Error(err),
				logging.String(logging.FieldImpact, "files from this "+kind+" are not extracted"))
			logging.WarnWithContext(logger, "extraction job failed", kind+"_extract_failed", attrs...)
		}
		return err
	})

	failed := workpool.Failures(outcomes)
	report := Report{Jobs: len(jobs), Failed: len(failed), Outcomes: outcomes}
	for _, o := range failed {
		if errors.Is(o.Err, procrun.ErrToolNotFound) {
			fatal = o.Err
			break
		}
	}
	if fatal != nil {
		return report, fmt.Errorf("%s extraction: %w", kind, fatal)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	logger.Info("extraction completed",
		logging.String("kind", kind),
		logging.Int("jobs", report.Jobs),
		logging.Int("failed", report.Failed))
	return report, nil
}
