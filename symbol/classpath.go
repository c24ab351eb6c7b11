package symbol

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/NickyBoy89/propmigrate/parsing"
	"github.com/NickyBoy89/propmigrate/tree"
)

// The classpath holds just enough of the JDK and of the Gradle API to resolve
// task classes: the boxed primitives, and the provider and annotation types
//
//go:embed classpath/*.java
var classpathFiles embed.FS

// classpathPrefix marks the paths of classpath units, which are never rewritten
const classpathPrefix = "classpath:"

// classpath parses the embedded declarations. Every symbol table gets its own
// copy, since loading attributes the trees in place
func classpath(ctx context.Context) ([]*tree.SourceUnit, error) {
	names, err := fs.Glob(classpathFiles, "classpath/*.java")
	if err != nil {
		return nil, err
	}

	parser := parsing.NewParser()
	units := make([]*tree.SourceUnit, 0, len(names))
	for _, name := range names {
		source, err := classpathFiles.ReadFile(name)
		if err != nil {
			return nil, err
		}
		unit, err := parser.Parse(ctx, classpathPrefix+path.Base(name), source)
		if err != nil {
			return nil, fmt.Errorf("loading classpath file %s: %w", name, err)
		}
		units = append(units, unit)
	}
	return units, nil
}
