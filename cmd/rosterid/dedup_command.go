package main

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"rosterid/internal/config"
	"rosterid/internal/dedup"
	"rosterid/internal/store"
)

func newDedupCommand(ctx *commandContext) *cobra.Command {
	dedupCmd := &cobra.Command{
		Use:   "dedup",
		Short: "Find and merge duplicate identities",
	}

	dedupCmd.AddCommand(newDedupScanCommand(ctx))
	dedupCmd.AddCommand(newDedupLogCommand(ctx))

	return dedupCmd
}

func newDedupScanCommand(ctx *commandContext) *cobra.Command {
	var (
		apply         bool
		assumeYes     bool
		minSimilarity float64
		candidates    []string
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan for probable duplicate identities",
		Long: `Scan the identity population for probable duplicates. Without --apply this
is a dry run: proposals are reported and nothing is merged. With --apply,
exact-name pairs merge automatically (when configured) and every other pair
is confirmed interactively unless --yes is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if minSimilarity > 0 {
					cfg.Dedup.MinSimilarity = minSimilarity
				}
				detector := dedup.New(st, cfg, ctx.logger(cfg))

				report, err := detector.Scan(cmd.Context(), candidates)
				if err != nil {
					return err
				}

				if !apply {
					if jsonOutput {
						return writeJSON(cmd, report)
					}
					printProposals(cmd, report)
					return nil
				}

				// Only one merger at a time; each merge needs exclusive access
				// to the rows it rewrites.
				lock := flock.New(filepath.Join(cfg.Paths.LogDir, "rosterid-dedup.lock"))
				locked, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire dedup lock: %w", err)
				}
				if !locked {
					return fmt.Errorf("another dedup apply is running (lock %s)", lock.Path())
				}
				defer lock.Unlock()

				summary, err := detector.Apply(cmd.Context(), report, approver(cmd, assumeYes))
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, summary)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Merged %d, skipped %d, failed %d\n",
					summary.Merged, summary.Skipped, summary.Failed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Execute proposed merges instead of reporting them")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Approve every proposal without prompting")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0, "Override the configured similarity threshold")
	cmd.Flags().StringSliceVar(&candidates, "candidate", nil, "Restrict the scan to pairs involving these athlete ids")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}

func printProposals(cmd *cobra.Command, report *dedup.Report) {
	out := cmd.OutOrStdout()
	if len(report.Proposals) == 0 {
		fmt.Fprintf(out, "Scanned %d identities, no duplicates proposed\n", report.Scanned)
		return
	}

	rows := make([][]string, 0, len(report.Proposals))
	for _, p := range report.Proposals {
		rows = append(rows, []string{
			p.WinnerName, p.WinnerID,
			p.LoserName, p.LoserID,
			fmt.Sprintf("%.3f", p.Similarity), yesNo(p.ExactName),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Winner", "Winner ID", "Loser", "Loser ID", "Similarity", "Exact"},
		rows, nil))
	fmt.Fprintf(out, "Scanned %d identities, %d proposals (dry run, use --apply to merge)\n",
		report.Scanned, len(report.Proposals))
}

// approver prompts per proposal on the command's stdin. With --yes everything
// is approved.
func approver(cmd *cobra.Command, assumeYes bool) dedup.Approver {
	if assumeYes {
		return func(dedup.Proposal) bool { return true }
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	return func(p dedup.Proposal) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "Merge %q (%s) into %q (%s), similarity %.3f? [y/N] ",
			p.LoserName, p.LoserID, p.WinnerName, p.WinnerID, p.Similarity)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func newDedupLogCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the merge audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				records, err := st.ListMergeRecords(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, records)
				}

				rows := make([][]string, 0, len(records))
				for _, r := range records {
					rows = append(rows, []string{
						r.CreatedAt.Format(time.RFC3339),
						string(r.Decision),
						r.WinnerID, r.LoserID,
						fmt.Sprintf("%.3f", r.Similarity),
						fmt.Sprint(r.ResidualMappings),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"When", "Decision", "Winner", "Loser", "Similarity", "Residual"},
					rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}
