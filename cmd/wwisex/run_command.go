package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wwisex/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Extract, deduplicate and convert the configured audio",
		Long: "Run unpacks the configured archives, splits the sound banks listed in\n" +
			"SoundbanksInfo.xml, moves new or changed media into the output directory,\n" +
			"converts it to Ogg Vorbis and rewrites the hash ledger.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtraction(cmd.Context(), cmd, ctx)
		},
	}
}

func runExtraction(cmdCtx context.Context, cmd *cobra.Command, ctx *commandContext) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}
	summary, runErr := p.Run(signalCtx)

	out := cmd.OutOrStdout()
	writeSummary(out, summary, runErr, shouldColorize(out))
	return runErr
}

func writeSummary(out io.Writer, s pipeline.Summary, runErr error, colorize bool) {
	for _, line := range renderSectionHeader("Run "+shortID(s.RunID), colorize) {
		fmt.Fprintln(out, line)
	}
	if s.Archives.Jobs > 0 {
		fmt.Fprintln(out, renderStatusLine("Archive extraction", failureKind(s.Archives.Failed),
			fmt.Sprintf("%d jobs, %d failed", s.Archives.Jobs, s.Archives.Failed), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Bank extraction", failureKind(s.Banks.Failed),
		fmt.Sprintf("%d banks, %d failed", s.Banks.Jobs, s.Banks.Failed), colorize))
	fmt.Fprintln(out, renderStatusLine("Media", statusInfo,
		fmt.Sprintf("%d moved, %d unchanged, %d duplicates", s.Dedup.Moved, s.Dedup.Skipped, s.Dedup.Duplicates), colorize))
	if s.Dedup.Unknown > 0 {
		fmt.Fprintln(out, renderStatusLine("Unknown media", statusWarn,
			fmt.Sprintf("%d files not in the manifest", s.Dedup.Unknown), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Transcode", failureKind(s.Transcode.Failed),
		fmt.Sprintf("%d converted, %d failed", s.Transcode.Converted, s.Transcode.Failed), colorize))

	if runErr != nil {
		fmt.Fprintln(out, renderStatusLine("Result", statusError, "ledger not updated", colorize))
		return
	}
	fmt.Fprintln(out, renderStatusLine("Ledger", statusOK,
		fmt.Sprintf("%d records written to %s", s.LedgerRecords, s.LedgerPath), colorize))
	fmt.Fprintln(out, renderStatusLine("Result", statusOK,
		fmt.Sprintf("sound extraction completed in %s", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond)), colorize))
}

func failureKind(failed int) statusKind {
	if failed > 0 {
		return statusWarn
	}
	return statusOK
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
