package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"wwisex/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "List the media recorded by the last successful run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			l, err := ledger.LoadWithError(cfg.Paths.LedgerPath)
			if err != nil {
				return fmt.Errorf("read ledger: %w", err)
			}

			out := cmd.OutOrStdout()
			records := l.Records()
			if needle := strings.ToLower(strings.TrimSpace(filter)); needle != "" {
				records = slices.DeleteFunc(records, func(r ledger.Record) bool {
					return !strings.Contains(strings.ToLower(r.FilePath), needle)
				})
			}
			if len(records) == 0 {
				fmt.Fprintf(out, "No ledger records in %s\n", cfg.Paths.LedgerPath)
				return nil
			}
			slices.SortFunc(records, func(a, b ledger.Record) int {
				return strings.Compare(a.FilePath, b.FilePath)
			})

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{r.FileID, r.FilePath, shortHash(r.FileHash)})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Path", "SHA-256"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
			fmt.Fprintf(out, "%d of %d records\n", len(records), l.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only show paths containing this text")
	return cmd
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
