package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/NickyBoy89/propmigrate/config"
	"github.com/NickyBoy89/propmigrate/printer"
	"github.com/NickyBoy89/propmigrate/recipe"
	"github.com/NickyBoy89/propmigrate/source"
	"github.com/NickyBoy89/propmigrate/symbol"
	"github.com/NickyBoy89/propmigrate/tree"
	"github.com/pmezard/go-difflib/difflib"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type runOptions struct {
	recipe     string
	dryRun     bool
	gitTracked bool
	workers    int
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Migrate the sources under the given paths",
		Long: `Migrate the Java and Groovy sources under the given paths, which default to
the current directory. Every file is parsed and type-checked together, so that
calls in one file are migrated along with the declarations in another.

Examples:
  propmigrate run                          # Migrate the current directory in place
  propmigrate run src/main --dry-run       # Print the changes as a diff
  propmigrate run --git-tracked            # Only touch files tracked by git
  propmigrate run --recipe plain-task-property`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.recipe, "recipe", "r", recipe.MigrateToProviderAPI{}.Name(), "Name of the recipe to run")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print a diff of the changes instead of writing them")
	cmd.Flags().BoolVar(&opts.gitTracked, "git-tracked", false, "Only migrate files that are tracked by git")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "Number of files to process at once (defaults to one per CPU)")
	return cmd
}

func runMigration(cmd *cobra.Command, opts *runOptions, args []string) error {
	settings, err := config.LoadRuntime()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("log-level") {
		log.SetLevel(settings.LogLevel)
	}
	if cmd.Flags().Changed("dry-run") {
		settings.DryRun = opts.dryRun
	}
	if cmd.Flags().Changed("workers") {
		if opts.workers < 1 {
			return fmt.Errorf("--workers must be at least 1, got %d", opts.workers)
		}
		settings.Workers = opts.workers
	}

	r, ok := recipe.ByName(opts.recipe)
	if !ok {
		return fmt.Errorf("unknown recipe %q, run `propmigrate recipes` to list them", opts.recipe)
	}

	ctx := cmd.Context()
	units, symbols, err := loadProgram(ctx, args, opts.gitTracked, settings.Workers)
	if err != nil || len(units) == 0 {
		return err
	}

	result, err := recipe.Execute(ctx, r, units, recipe.Options{
		Config:  config.Default(),
		Symbols: symbols,
		Workers: settings.Workers,
	})
	if err != nil {
		return err
	}

	var failed int
	for _, change := range result.Changes {
		path := change.Before.Path
		out, err := printer.Print(change.Before, change.After)
		if err != nil {
			log.WithField("path", path).Errorf("Could not print the migrated file: %v", err)
			failed++
			continue
		}

		if settings.DryRun {
			if err := writeDiff(cmd.OutOrStdout(), path, change.Before.Source, out); err != nil {
				return err
			}
			continue
		}
		if err := source.Write(path, out); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.WithField("path", path).Info("Migrated file")
	}

	log.WithFields(log.Fields{
		"recipe":      r.Name(),
		"files":       len(units),
		"changed":     len(result.Changes) - failed,
		"candidates":  len(result.Candidates),
		"diagnostics": len(result.Diagnostics),
		"dry-run":     settings.DryRun,
	}).Info("Finished")

	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be printed", failed)
	}
	return nil
}

// loadProgram discovers, reads and parses the sources under the given roots,
// then loads their symbols. It returns no units if there are no sources
func loadProgram(ctx context.Context, roots []string, gitTracked bool, workers int) ([]*tree.SourceUnit, *symbol.GlobalSymbols, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	paths, err := source.Discover(roots...)
	if err != nil {
		return nil, nil, err
	}
	if gitTracked {
		tracked, err := source.OpenTracked(directoryOf(roots[0]))
		if err != nil {
			return nil, nil, err
		}
		paths = tracked.Filter(paths)
	}
	if len(paths) == 0 {
		log.Warn("No source files found")
		return nil, nil, nil
	}
	log.WithField("files", len(paths)).Info("Loading sources")

	units, err := source.Load(ctx, paths, workers)
	if err != nil {
		return nil, nil, err
	}
	symbols, err := symbol.Load(ctx, units)
	if err != nil {
		return nil, nil, err
	}
	return units, symbols, nil
}

// writeDiff prints the changes to a file as a unified diff
func writeDiff(w io.Writer, path string, before, after []byte) error {
	name := filepath.ToSlash(path)
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, diff)
	return err
}

// directoryOf returns a path if it is a directory, or the directory that
// contains it otherwise
func directoryOf(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}
