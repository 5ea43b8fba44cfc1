package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rosterid/internal/config"
	"rosterid/internal/store"
)

func newFlagsCommand(ctx *commandContext) *cobra.Command {
	flagsCmd := &cobra.Command{
		Use:   "flags",
		Short: "Maintain per-athlete aggregate flags",
	}

	flagsCmd.AddCommand(newFlagsRefreshCommand(ctx))

	return flagsCmd
}

func newFlagsRefreshCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "refresh [athlete-id]",
		Short: "Recompute aggregate flags from the fact tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("provide an athlete id or --all, not both")
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()
				if all {
					refreshed, err := st.RefreshAllFlags(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Refreshed flags for %d athletes\n", refreshed)
					return nil
				}
				if err := st.RefreshFlags(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "Refreshed flags for %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Refresh every athlete (bulk backfill)")
	return cmd
}
