package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newRootCommand builds the command tree. Every call returns fresh commands,
// so that flags never leak between invocations
func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "propmigrate",
		Short: "Migrate Gradle task properties to the Provider API",
		Long: `propmigrate rewrites the plain properties of Gradle tasks to use Property<T>.

Every property whose getter is annotated with @Input is migrated:
  - the field becomes a final Property<T>
  - the getter returns Property<T>
  - the setter is removed
  - calls like task.setLabel(v) become task.getLabel().set(v), or task.label.set(v) in Groovy

Usage:
  propmigrate run [paths...]     Migrate the sources under the given paths
  propmigrate graph [paths...]   Draw the properties that would be migrated
  propmigrate recipes            List the available recipes
  propmigrate version            Print version`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("log-level") {
				return nil
			}
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			log.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(newRunCommand())
	root.AddCommand(newGraphCommand())
	root.AddCommand(newRecipesCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
