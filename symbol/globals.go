package symbol

import (
	"strings"

	"github.com/NickyBoy89/propmigrate/javatype"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A GlobalSymbols represents a global view of all the packages in the parsed
// source, along with the classpath that the source is compiled against
type GlobalSymbols struct {
	// Every package's path associated with its definition
	Packages map[string]*PackageScope
	// Every class, keyed by its fully-qualified name. Nested classes are
	// separated from their enclosing class by `$`
	classes map[string]*ClassScope
}

func newGlobalSymbols() *GlobalSymbols {
	return &GlobalSymbols{
		Packages: make(map[string]*PackageScope),
		classes:  make(map[string]*ClassScope),
	}
}

func (gs *GlobalSymbols) String() string {
	names := maps.Keys(gs.Packages)
	slices.Sort(names)
	return strings.Join(names, "\n")
}

// FindPackage looks up a package's path in the global scope, and returns it
func (gs *GlobalSymbols) FindPackage(name string) *PackageScope {
	return gs.Packages[name]
}

// FindClass returns the scope of a class by its fully-qualified name
func (gs *GlobalSymbols) FindClass(fqn string) *ClassScope {
	return gs.classes[fqn]
}

// Class returns the resolved type of a class by its fully-qualified name, or
// nil if no such class is known
func (gs *GlobalSymbols) Class(fqn string) *javatype.Class {
	if scope := gs.classes[fqn]; scope != nil {
		return scope.Class
	}
	return nil
}

// ClassNames lists the fully-qualified names of every known class, in order
func (gs *GlobalSymbols) ClassNames() []string {
	names := maps.Keys(gs.classes)
	slices.Sort(names)
	return names
}

func (gs *GlobalSymbols) packageScope(name string) *PackageScope {
	scope, ok := gs.Packages[name]
	if !ok {
		scope = &PackageScope{
			Name:    name,
			Files:   make(map[string]*FileScope),
			Classes: make(map[string]*ClassScope),
		}
		gs.Packages[name] = scope
	}
	return scope
}
