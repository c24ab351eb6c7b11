// Package source finds the Java and Groovy files of a project, reads them into
// units, and writes rewritten units back.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/NickyBoy89/propmigrate/parsing"
	"github.com/NickyBoy89/propmigrate/tree"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Extensions are the file extensions that are read as source files
var Extensions = []string{".java", ".groovy"}

// skippedDirs are never descended into when discovering files
var skippedDirs = map[string]bool{
	"build":        true,
	"node_modules": true,
}

// IsSourceFile reports whether a path has one of the source extensions
func IsSourceFile(path string) bool {
	ext := filepath.Ext(path)
	for _, allowed := range Extensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

// Discover lists the source files under the given roots. A root may be a file
// or a directory. Hidden directories and build outputs are skipped. The result
// is sorted, and lists every file once
func Discover(roots ...string) ([]string, error) {
	found := make(map[string]struct{})
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if IsSourceFile(root) {
				found[filepath.Clean(root)] = struct{}{}
			} else {
				log.WithField("path", root).Debug("Skipping file that is not a source file")
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != root && (strings.HasPrefix(name, ".") || skippedDirs[name]) {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSourceFile(path) {
				found[path] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discovering files in %s: %w", root, err)
		}
	}

	paths := maps.Keys(found)
	slices.Sort(paths)
	return paths, nil
}

// Load reads and parses every file, using up to workers parsers at once. A
// file with syntax errors is still loaded, since the parser recovers from
// them, but a file that cannot be read or converted stops the load. The units
// are in the same order as the paths
func Load(ctx context.Context, paths []string, workers int) ([]*tree.SourceUnit, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	units := make([]*tree.SourceUnit, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			unit, err := loadFile(ctx, path)
			if err != nil {
				return err
			}
			units[i] = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

func loadFile(ctx context.Context, path string) (*tree.SourceUnit, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	unit, err := parsing.Parse(ctx, path, contents)
	var syntaxErr *parsing.SyntaxError
	if errors.As(err, &syntaxErr) {
		log.WithFields(log.Fields{
			"path":     path,
			"problems": len(syntaxErr.Problems),
		}).Warn("File has syntax errors, constructs around them will not be migrated")
		log.Debug(syntaxErr.Error())
		return unit, nil
	}
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// Write replaces the contents of a file, keeping its permissions
func Write(path string, contents []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, contents, mode)
}
