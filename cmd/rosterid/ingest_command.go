package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rosterid/internal/config"
	"rosterid/internal/ingest"
	"rosterid/internal/match"
	"rosterid/internal/resolve"
	"rosterid/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ingest <manifest.jsonl>",
		Short: "Process a manifest of parsed source records",
		Long: `Process a JSON-lines manifest emitted by the format-specific parsers.
Each line is one record: identity-bearing records are resolved to canonical
athletes, trial-only records are matched to their owners, and session facts
are written under the resolved identity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open manifest: %w", err)
			}
			defer file.Close()

			records, err := ingest.ReadManifest(file)
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				logger := ctx.logger(cfg)
				pipeline := ingest.New(st,
					resolve.New(st, ctx.registryClient(cfg), logger),
					match.NewMatcher(cfg, logger),
					logger)

				summary, err := pipeline.Run(cmd.Context(), records)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, summary)
				}

				rows := [][]string{
					{"Records", fmt.Sprint(len(records))},
					{"Resolved", fmt.Sprint(summary.Resolved)},
					{"Trials matched", fmt.Sprint(summary.TrialsMatched)},
					{"Trials unmatched", fmt.Sprint(summary.TrialsUnmatched)},
					{"Trials skipped", fmt.Sprint(summary.TrialsSkipped)},
					{"Sessions written", fmt.Sprint(summary.SessionsWritten)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Metric", "Count"}, rows,
					[]columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}
