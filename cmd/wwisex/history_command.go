package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"wwisex/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past runs, or the details of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if len(args) == 1 {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintf(out, "Status:     %s\n", runStatusLabel(run.Status, colorize))
				fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "Duration:   %s\n", run.Duration().Round(time.Millisecond))
				fmt.Fprintf(out, "Entries:    %d (%d moved, %d unchanged, %d duplicates)\n", run.Entries, run.Moved, run.Skipped, run.Duplicates)
				fmt.Fprintf(out, "Unknown:    %d\n", run.Unknown)
				fmt.Fprintf(out, "Transcoded: %d\n", run.Transcoded)
				fmt.Fprintf(out, "Failed:     %d\n", run.Failed)
				fmt.Fprintf(out, "Ledger:     %d records\n", run.LedgerRecords)
				if run.Error != "" {
					fmt.Fprintf(out, "Error:      %s\n", run.Error)
				}
				return nil
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					runStatusLabel(run.Status, colorize),
					strconv.Itoa(run.Moved),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Unknown),
					strconv.Itoa(run.Transcoded),
					strconv.Itoa(run.Failed),
				})
			}
			headers := []string{"Run", "Started", "Status", "Moved", "Unchanged", "Unknown", "Converted", "Failed"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 for all)")
	return cmd
}
