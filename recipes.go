package main

import (
	"fmt"

	"github.com/NickyBoy89/propmigrate/recipe"
	"github.com/spf13/cobra"
)

func newRecipesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List the available recipes",
		Long: `List every recipe that "propmigrate run --recipe" accepts.

The default recipe runs the whole migration, whose steps are listed under it.
The others only report the plain properties, or only retype getters.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, r := range recipe.All() {
				fmt.Fprintf(out, "%-26s %s\n", r.Name(), r.DisplayName())
				if pipeline, ok := r.(recipe.MigrateToProviderAPI); ok {
					for i, step := range pipeline.Steps() {
						fmt.Fprintf(out, "  %d. %s\n", i+1, step.DisplayName())
					}
				}
			}
		},
	}
}
