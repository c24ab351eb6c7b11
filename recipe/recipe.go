// Package recipe implements the migration of plain task properties to the
// Provider API, as a set of recipes that each rewrite a whole program.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/NickyBoy89/propmigrate/analysis"
	"github.com/NickyBoy89/propmigrate/config"
	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/symbol"
	"github.com/NickyBoy89/propmigrate/tree"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Recipe is a single named rewrite over every unit of a program
type Recipe interface {
	// Name identifies the recipe on the command line
	Name() string
	// DisplayName is a human-readable title
	DisplayName() string
	Description() string
	// Run rewrites the units of the run. An error stops the whole run, so
	// problems confined to one file are reported as diagnostics instead
	Run(ctx context.Context, run *Run) error
}

// Options configure a run
type Options struct {
	Config config.Config
	// Symbols must have been loaded from the same units that the run rewrites
	Symbols *symbol.GlobalSymbols
	// Workers bounds how many units are processed at once. Zero means one per CPU
	Workers int
}

// Run is the state of one execution of a recipe, shared by every pass of it
type Run struct {
	Config  config.Config
	Symbols *symbol.GlobalSymbols
	// Wrapper is the resolved wrapper class
	Wrapper *javatype.Class

	workers int
	units   []*tree.SourceUnit

	analysis   *analysis.Context
	freezeOnce sync.Once
	lookup     analysis.Lookup

	mu          sync.Mutex
	diagnostics []Diagnostic
}

// Change is a unit that a run rewrote
type Change struct {
	Before *tree.SourceUnit
	After  *tree.SourceUnit
}

// Result is everything that a run produced
type Result struct {
	// Units holds every unit, rewritten or not, in the order they were given
	Units       []*tree.SourceUnit
	Changes     []Change
	Diagnostics []Diagnostic
	// Candidates holds the properties that discovery collected, if it ran
	Candidates []analysis.Candidate
}

// Execute runs a recipe over a program. The units are never modified: the
// result holds new units for the ones that changed
func Execute(ctx context.Context, r Recipe, units []*tree.SourceUnit, opts Options) (*Result, error) {
	if opts.Symbols == nil {
		return nil, errors.New("recipe: no symbols were loaded")
	}
	wrapper := opts.Symbols.Class(opts.Config.WrapperType)
	if wrapper == nil {
		return nil, fmt.Errorf("recipe: wrapper type %s is not on the classpath", opts.Config.WrapperType)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	run := &Run{
		Config:   opts.Config,
		Symbols:  opts.Symbols,
		Wrapper:  wrapper,
		workers:  workers,
		units:    append([]*tree.SourceUnit(nil), units...),
		analysis: analysis.NewContext(),
	}

	log.WithFields(log.Fields{
		"recipe":  r.Name(),
		"units":   len(units),
		"workers": workers,
	}).Debug("Running recipe")

	if err := r.Run(ctx, run); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", r.Name(), err)
	}

	// Workers report in whatever order they finish
	sort.SliceStable(run.diagnostics, func(i, j int) bool {
		return run.diagnostics[i].Path < run.diagnostics[j].Path
	})
	result := &Result{
		Units:       run.units,
		Diagnostics: run.diagnostics,
		Candidates:  run.Lookup().Candidates(),
	}
	for i, unit := range run.units {
		if unit != units[i] {
			result.Changes = append(result.Changes, Change{Before: units[i], After: unit})
		}
	}
	return result, nil
}

// Units returns the units as they stand after the passes run so far
func (r *Run) Units() []*tree.SourceUnit {
	return r.units
}

// Recorder gives discovery write access to the candidates
func (r *Run) Recorder() analysis.Recorder {
	return r.analysis
}

// Lookup freezes the candidates the first time that it is called, and returns
// a read-only view of them. Nothing can be recorded afterwards
func (r *Run) Lookup() analysis.Lookup {
	r.freezeOnce.Do(func() {
		r.lookup = r.analysis.Freeze()
		log.WithField("candidates", r.lookup.Len()).Debug("Froze property candidates")
	})
	return r.lookup
}

// Report records a diagnostic, and logs it
func (r *Run) Report(d Diagnostic) {
	d.log()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = append(r.diagnostics, d)
}

// Diagnostics returns what has been reported so far
func (r *Run) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.diagnostics...)
}

// unitFunc rewrites a single unit. Returning the unit unchanged keeps it
type unitFunc func(ctx context.Context, unit *tree.SourceUnit) (*tree.SourceUnit, error)

// eachUnit applies a function to every unit in parallel, and replaces the
// units with the results. A failure in one unit leaves that unit as it was and
// is reported as a diagnostic, unless the failure is a defect that has to stop
// the run
func (r *Run) eachUnit(ctx context.Context, recipe string, fn unitFunc) error {
	results := make([]*tree.SourceUnit, len(r.units))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, unit := range r.units {
		i, unit := i, unit
		results[i] = unit
		g.Go(func() (err error) {
			defer func() {
				if recovered := recover(); recovered != nil {
					r.Report(Diagnostic{
						Severity: Error,
						Recipe:   recipe,
						Path:     unit.Path,
						Message:  fmt.Sprintf("rewrite failed: %v", recovered),
					})
					err = nil
				}
			}()

			updated, err := fn(ctx, unit)
			if err != nil {
				if isFatal(err) {
					return fmt.Errorf("%s: %w", unit.Path, err)
				}
				r.Report(Diagnostic{
					Severity: Error,
					Recipe:   recipe,
					Path:     unit.Path,
					Message:  err.Error(),
				})
				return nil
			}
			results[i] = updated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.units = results
	return nil
}

// isFatal reports whether an error means that the run cannot continue
func isFatal(err error) bool {
	return errors.Is(err, ErrUnsupportedPrimitive) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
