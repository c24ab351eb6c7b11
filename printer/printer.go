// Package printer turns rewritten trees back into source text. Rather than
// printing a whole tree, it compares the rewritten tree against the tree it was
// parsed as, and edits the original text only where the two differ, so that
// everything the recipes did not touch keeps its exact formatting.
package printer

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/NickyBoy89/propmigrate/tree"
)

// edit replaces the bytes between Start and End. Insertions have an empty range
type edit struct {
	tree.Span
	Text string
}

// Print renders a rewritten unit, given the unit as it was parsed
func Print(before, after *tree.SourceUnit) ([]byte, error) {
	if before == after {
		return before.Source, nil
	}
	if before.Path != after.Path {
		return nil, fmt.Errorf("printing %s: rewritten unit is for %s", before.Path, after.Path)
	}

	p := newPrinter(before)
	e := p.editor()
	if err := e.unit(before, after); err != nil {
		return nil, fmt.Errorf("printing %s: %w", before.Path, err)
	}
	out, err := apply(p.source, 0, e.edits)
	if err != nil {
		return nil, fmt.Errorf("printing %s: %w", before.Path, err)
	}
	return out, nil
}

// nodeKey identifies a parsed node. Nested nodes may share a span, so the
// node's type is part of the key
type nodeKey struct {
	span tree.Span
	typ  reflect.Type
}

func keyOf(n tree.Node) nodeKey {
	return nodeKey{span: n.Pos(), typ: reflect.TypeOf(n)}
}

type printer struct {
	source  []byte
	dialect tree.Dialect
	// original holds every node of the parsed tree, by position
	original map[nodeKey]tree.Node
	format   *tree.Formatter
}

func newPrinter(unit *tree.SourceUnit) *printer {
	p := &printer{
		source:   unit.Source,
		dialect:  unit.Dialect,
		original: make(map[nodeKey]tree.Node),
	}
	tree.Inspect(unit, func(c *tree.Cursor) bool {
		if n := c.Node(); n.Pos().Valid() {
			p.original[keyOf(n)] = n
		}
		return true
	})
	p.format = &tree.Formatter{Dialect: unit.Dialect, Spanned: p.renderSpanned}
	return p
}

func (p *printer) editor() *editor {
	return &editor{p: p}
}

// text returns the original text of a span
func (p *printer) text(span tree.Span) string {
	return span.Text(p.source)
}

// renderSpanned renders a parsed node that ended up inside of a synthesized
// one. The node may itself have been rewritten, so its own changes are
// applied to its original text
func (p *printer) renderSpanned(n tree.Node) (string, error) {
	span := n.Pos()
	original, ok := p.original[keyOf(n)]
	if !ok || original == n {
		return p.text(span), nil
	}

	e := p.editor()
	if err := e.diff(original, n); err != nil {
		return "", err
	}
	out, err := apply(p.source[span.Start:span.End], span.Start, e.edits)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// render renders a node, whether parsed or synthesized
func (p *printer) render(n tree.Node) (string, error) {
	return p.format.Format(n)
}

// apply performs a set of edits on some text, which starts at offset base in
// the source that the edits' spans refer to
func apply(text []byte, base int, edits []edit) ([]byte, error) {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Start < edits[j].Start
	})

	var sb strings.Builder
	sb.Grow(len(text))
	pos := base
	for i, e := range edits {
		if i > 0 && e.Start < edits[i-1].End {
			return nil, fmt.Errorf("overlapping edits at %d and %d", edits[i-1].Start, e.Start)
		}
		if e.Start < base || e.End > base+len(text) || e.End < e.Start {
			return nil, fmt.Errorf("edit [%d, %d) is out of range", e.Start, e.End)
		}
		sb.Write(text[pos-base : e.Start-base])
		sb.WriteString(e.Text)
		pos = e.End
	}
	sb.Write(text[pos-base:])
	return []byte(sb.String()), nil
}
