package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rosterid/internal/athlete"
	"rosterid/internal/config"
	"rosterid/internal/resolve"
	"rosterid/internal/store"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		birthDate  string
		gender     string
		heightCM   float64
		weightKG   float64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <source-system> <source-local-id> [display-name]",
		Short: "Resolve a source-local identifier to a canonical athlete",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				displayName := ""
				if len(args) == 3 {
					displayName = args[2]
				}

				resolver := resolve.New(st, ctx.registryClient(cfg), ctx.logger(cfg))
				id, err := resolver.Resolve(cmd.Context(), resolve.Request{
					SourceSystem:  strings.TrimSpace(args[0]),
					SourceLocalID: strings.TrimSpace(args[1]),
					DisplayName:   displayName,
					Demographics: athlete.Demographics{
						BirthDate: birthDate,
						Gender:    gender,
						HeightCM:  heightCM,
						WeightKG:  weightKG,
					},
				})
				if err != nil {
					return err
				}

				resolved, err := st.GetAthlete(cmd.Context(), id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resolved)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Athlete ID:      %s\n", resolved.ID)
				fmt.Fprintf(out, "Display name:    %s\n", resolved.DisplayName)
				fmt.Fprintf(out, "Normalized name: %s\n", resolved.NormalizedName)
				fmt.Fprintf(out, "Low confidence:  %s\n", yesNo(resolved.LowConfidence))
				if resolved.RegistryID != "" {
					fmt.Fprintf(out, "Registry ID:     %s\n", resolved.RegistryID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&birthDate, "birth-date", "", "Birth date hint (YYYY-MM-DD)")
	cmd.Flags().StringVar(&gender, "gender", "", "Gender hint")
	cmd.Flags().Float64Var(&heightCM, "height", 0, "Height hint in centimeters")
	cmd.Flags().Float64Var(&weightKG, "weight", 0, "Weight hint in kilograms")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}
