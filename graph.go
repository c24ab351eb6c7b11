package main

import (
	"io"
	"os"

	"github.com/NickyBoy89/propmigrate/analysis"
	"github.com/NickyBoy89/propmigrate/config"
	"github.com/NickyBoy89/propmigrate/dot"
	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/recipe"
	"github.com/NickyBoy89/propmigrate/symbol"
	"github.com/spf13/cobra"
)

func newGraphCommand() *cobra.Command {
	var (
		output     string
		gitTracked bool
	)
	cmd := &cobra.Command{
		Use:   "graph [paths...]",
		Short: "Draw the properties that would be migrated",
		Long: `Find the plain properties under the given paths without changing anything,
and write them out as a Graphviz graph. Every task points to its properties,
and to the supertypes that it inherits them through.

Examples:
  propmigrate graph src/main | dot -Tsvg > properties.svg
  propmigrate graph -o properties.dot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadRuntime()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			units, symbols, err := loadProgram(ctx, args, gitTracked, settings.Workers)
			if err != nil {
				return err
			}
			var candidates []analysis.Candidate
			if len(units) > 0 {
				result, err := recipe.Execute(ctx, recipe.CollectPlainProperties{}, units, recipe.Options{
					Config:  config.Default(),
					Symbols: symbols,
					Workers: settings.Workers,
				})
				if err != nil {
					return err
				}
				candidates = result.Candidates
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			_, err = candidateGraph(symbols, candidates).WriteTo(w)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write the graph to (defaults to standard output)")
	cmd.Flags().BoolVar(&gitTracked, "git-tracked", false, "Only read files that are tracked by git")
	return cmd
}

// candidateGraph groups the types that have candidates by package. Each type
// points to its properties, and to its direct supertypes
func candidateGraph(symbols *symbol.GlobalSymbols, candidates []analysis.Candidate) *dot.Graph {
	g := dot.New()
	for _, candidate := range candidates {
		var class *javatype.Class
		if symbols != nil {
			class = symbols.Class(candidate.TypeName)
		}

		pkg := &g.SubGraph
		if class != nil && class.PackageName() != "" {
			pkg = g.Subgraph(class.PackageName())
		}
		property := candidate.TypeName + "." + candidate.Property
		pkg.AddNode(property)
		pkg.AddNode(candidate.TypeName, property)

		if class == nil {
			continue
		}
		for _, super := range class.Supertypes {
			base := javatype.ClassOf(super)
			if base == nil || base.FQN == javatype.ObjectName {
				continue
			}
			pkg.AddNode(candidate.TypeName, base.FQN)
		}
	}
	return g
}
