// Package analysis holds the state that the passes of a migration share: which
// properties of which types were found to be plain, and which dialect each
// file is written in.
package analysis

import (
	"sync"

	"github.com/NickyBoy89/propmigrate/tree"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Candidate is a property that was approved for migration
type Candidate struct {
	// TypeName is the fully-qualified name of the declaring type
	TypeName string
	Property string
}

// Recorder is the write side of a Context, handed to the discovery pass
type Recorder interface {
	// Record adds a candidate, and reports whether it was new
	Record(typeName, property string) bool
	// SetDialect tags a file with the dialect that it is written in
	SetDialect(path string, dialect tree.Dialect)
}

// Context accumulates candidates while discovery runs. It is safe to use from
// multiple goroutines, and stops accepting candidates once it is frozen
type Context struct {
	mu         sync.Mutex
	properties map[string]map[string]struct{}
	dialects   map[string]tree.Dialect
	frozen     bool
}

// NewContext creates an empty context for a single pipeline run
func NewContext() *Context {
	return &Context{
		properties: make(map[string]map[string]struct{}),
		dialects:   make(map[string]tree.Dialect),
	}
}

func (c *Context) Record(typeName, property string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		panic("analysis: candidate recorded after the context was frozen")
	}
	names, ok := c.properties[typeName]
	if !ok {
		names = make(map[string]struct{})
		c.properties[typeName] = names
	}
	if _, seen := names[property]; seen {
		return false
	}
	names[property] = struct{}{}
	return true
}

func (c *Context) SetDialect(path string, dialect tree.Dialect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialects[path] = dialect
}

// Freeze stops the context from accepting more candidates, and returns a
// read-only view of everything recorded so far. Freezing twice returns views
// of the same state
func (c *Context) Freeze() Lookup {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
	return Lookup{properties: c.properties, dialects: c.dialects}
}

// Lookup is the read side of a frozen Context. Since nothing can be recorded
// anymore, it needs no locking
type Lookup struct {
	properties map[string]map[string]struct{}
	dialects   map[string]tree.Dialect
}

// Has reports whether a property of a type is a candidate
func (l Lookup) Has(typeName, property string) bool {
	_, ok := l.properties[typeName][property]
	return ok
}

// HasType reports whether a type has any candidates at all
func (l Lookup) HasType(typeName string) bool {
	return len(l.properties[typeName]) > 0
}

// Properties lists the candidate properties of a type, in order
func (l Lookup) Properties(typeName string) []string {
	names := maps.Keys(l.properties[typeName])
	slices.Sort(names)
	return names
}

// Types lists every type that has candidates, in order
func (l Lookup) Types() []string {
	types := maps.Keys(l.properties)
	slices.Sort(types)
	return types
}

// Candidates lists every candidate, ordered by type, then by property
func (l Lookup) Candidates() []Candidate {
	var candidates []Candidate
	for _, typeName := range l.Types() {
		for _, property := range l.Properties(typeName) {
			candidates = append(candidates, Candidate{TypeName: typeName, Property: property})
		}
	}
	return candidates
}

// Dialect returns the dialect that a file was tagged with, or the dialect
// implied by its extension if it was never tagged
func (l Lookup) Dialect(path string) tree.Dialect {
	if dialect, ok := l.dialects[path]; ok {
		return dialect
	}
	return tree.DialectOf(path)
}

// Len returns the number of candidates
func (l Lookup) Len() int {
	total := 0
	for _, names := range l.properties {
		total += len(names)
	}
	return total
}
