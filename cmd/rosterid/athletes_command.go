package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"rosterid/internal/config"
	"rosterid/internal/store"
)

func newAthletesCommand(ctx *commandContext) *cobra.Command {
	athletesCmd := &cobra.Command{
		Use:   "athletes",
		Short: "Inspect canonical athlete identities",
	}

	athletesCmd.AddCommand(newAthletesListCommand(ctx))
	athletesCmd.AddCommand(newAthletesShowCommand(ctx))

	return athletesCmd
}

func newAthletesListCommand(ctx *commandContext) *cobra.Command {
	var (
		includeMerged bool
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List canonical identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				athletes, err := st.ListAthletes(cmd.Context(), includeMerged)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, athletes)
				}

				rows := make([][]string, 0, len(athletes))
				for _, a := range athletes {
					status := "active"
					if a.Merged() {
						status = "merged into " + a.MergedInto
					}
					rows = append(rows, []string{
						a.ID, a.DisplayName, a.NormalizedName,
						a.SourceSystem, yesNo(a.LowConfidence), status,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Normalized", "First source", "Low conf", "Status"},
					rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&includeMerged, "merged", false, "Include merged tombstone identities")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}

func newAthletesShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <athlete-id>",
		Short: "Show one identity with its mappings and aggregate flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				a, err := st.GetAthlete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if a == nil {
					return fmt.Errorf("athlete %s not found", args[0])
				}

				mappings, err := st.MappingsForAthlete(cmd.Context(), a.ID)
				if err != nil {
					return err
				}
				flags, err := st.FlagsForAthlete(cmd.Context(), a.ID)
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, map[string]any{
						"athlete":  a,
						"mappings": mappings,
						"flags":    flags,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:              %s\n", a.ID)
				fmt.Fprintf(out, "Display name:    %s\n", a.DisplayName)
				fmt.Fprintf(out, "Normalized name: %s\n", a.NormalizedName)
				if a.BirthDate != "" {
					fmt.Fprintf(out, "Birth date:      %s\n", a.BirthDate)
				}
				fmt.Fprintf(out, "First source:    %s\n", a.SourceSystem)
				fmt.Fprintf(out, "Low confidence:  %s\n", yesNo(a.LowConfidence))
				if a.RegistryID != "" {
					fmt.Fprintf(out, "Registry ID:     %s\n", a.RegistryID)
				}
				if a.Merged() {
					fmt.Fprintf(out, "Merged into:     %s\n", a.MergedInto)
				}

				if len(mappings) > 0 {
					rows := make([][]string, 0, len(mappings))
					for _, m := range mappings {
						rows = append(rows, []string{m.SourceSystem, m.SourceLocalID})
					}
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderTable(
						[]string{"Source system", "Source-local ID"}, rows, nil))
				}

				if len(flags) > 0 {
					subsystems := make([]string, 0, len(flags))
					for subsystem := range flags {
						subsystems = append(subsystems, subsystem)
					}
					sort.Strings(subsystems)

					rows := make([][]string, 0, len(subsystems))
					for _, subsystem := range subsystems {
						f := flags[subsystem]
						rows = append(rows, []string{
							subsystem, yesNo(f.HasData), fmt.Sprint(f.SessionCount),
						})
					}
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderTable(
						[]string{"Subsystem", "Has data", "Sessions"}, rows,
						[]columnAlignment{alignLeft, alignLeft, alignRight}))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}
