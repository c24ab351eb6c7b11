package printer

import (
	"github.com/NickyBoy89/propmigrate/tree"
)

// list diffs two lists of members or statements, each on a line of its own.
// Parsed elements are matched up by their position, synthesized elements are
// inserted next to their neighbors, and old elements that have no match are
// removed. New elements of an empty list go in front of end
func (e *editor) list(end tree.Span, old, updated []tree.Node) error {
	return e.alignedList(old, updated, func(prev, next tree.Node, text string) {
		e.insertLine(prev, next, end, text)
	}, e.removeLine)
}

// alignedList matches up the elements of two lists, then calls insert for
// every new element, and remove for every element that went away. The
// neighbors passed to insert are the original versions of the closest
// elements on either side that were kept, if any
func (e *editor) alignedList(old, updated []tree.Node, insert func(prev, next tree.Node, text string), remove func(n tree.Node)) error {
	index := make(map[nodeKey]int, len(old))
	for i, n := range old {
		if n.Pos().Valid() {
			index[keyOf(n)] = i
		}
	}

	matched := make([]int, len(updated))
	kept := make([]bool, len(old))
	for j, n := range updated {
		matched[j] = -1
		if !n.Pos().Valid() {
			continue
		}
		if i, ok := index[keyOf(n)]; ok && !kept[i] {
			matched[j] = i
			kept[i] = true
		}
	}

	var prev tree.Node
	for j, n := range updated {
		if i := matched[j]; i >= 0 {
			if err := e.diff(old[i], n); err != nil {
				return err
			}
			prev = old[i]
			continue
		}

		var next tree.Node
		for k := j + 1; k < len(updated); k++ {
			if matched[k] >= 0 {
				next = old[matched[k]]
				break
			}
		}
		text, err := e.p.render(n)
		if err != nil {
			return err
		}
		insert(prev, next, text)
	}

	for i, n := range old {
		if !kept[i] {
			remove(n)
		}
	}
	return nil
}

// insertLine places a new element on a line of its own, indented like its
// neighbors
func (e *editor) insertLine(prev, next tree.Node, end tree.Span, text string) {
	switch {
	case prev != nil:
		at := prev.Pos().End
		e.add(tree.Span{Start: at, End: at}, "\n"+e.indent(prev)+text)
	case next != nil:
		at := next.Pos().Start
		e.add(tree.Span{Start: at, End: at}, text+"\n"+e.indent(next))
	default:
		e.add(tree.Span{Start: end.Start, End: end.Start}, text+"\n")
	}
}

// removeLine removes an element along with the whitespace before it, so that
// no blank line is left where it was
func (e *editor) removeLine(n tree.Node) {
	span := n.Pos()
	start := span.Start
	for start > 0 && isSpace(e.p.source[start-1]) {
		start--
	}
	e.add(tree.Span{Start: start, End: span.End}, "")
}

// indent returns the whitespace that a node's line starts with
func (e *editor) indent(n tree.Node) string {
	start := n.Pos().Start
	lineStart := start
	for lineStart > 0 && e.p.source[lineStart-1] != '\n' {
		lineStart--
	}
	indent := lineStart
	for indent < start && (e.p.source[indent] == ' ' || e.p.source[indent] == '\t') {
		indent++
	}
	return string(e.p.source[lineStart:indent])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// closingBrace is where new elements go when a braced list is empty
func closingBrace(n tree.Node) tree.Span {
	end := n.Pos().End - 1
	if end < n.Pos().Start {
		end = n.Pos().Start
	}
	return tree.Span{Start: end, End: end}
}

// modifiers diffs a declaration's keyword modifiers. New modifiers go after the
// last kept modifier before them, or in front of anchor, which is the start of
// whatever follows the modifiers
func (e *editor) modifiers(old, updated []*tree.Modifier, anchor tree.Span) error {
	return e.alignedList(nodesOf(old), nodesOf(updated), func(prev, next tree.Node, text string) {
		switch {
		case prev != nil:
			at := prev.Pos().End
			e.add(tree.Span{Start: at, End: at}, " "+text)
		case next != nil:
			at := next.Pos().Start
			e.add(tree.Span{Start: at, End: at}, text+" ")
		default:
			e.add(tree.Span{Start: anchor.Start, End: anchor.Start}, text+" ")
		}
	}, func(n tree.Node) {
		span := n.Pos()
		end := span.End
		for end < len(e.p.source) && (e.p.source[end] == ' ' || e.p.source[end] == '\t') {
			end++
		}
		e.add(tree.Span{Start: span.Start, End: end}, "")
	})
}

// imports diffs the imports of a unit. A new import goes on the line after the
// import before it, or the line before the import after it. When there are no
// imports left to line up with, it gets a paragraph of its own after the
// package declaration, or before the first type
func (e *editor) imports(old, updated *tree.SourceUnit) error {
	return e.alignedList(nodesOf(old.Imports), nodesOf(updated.Imports), func(prev, next tree.Node, text string) {
		switch {
		case prev != nil:
			at := prev.Pos().End
			e.add(tree.Span{Start: at, End: at}, "\n"+text)
		case next != nil:
			at := next.Pos().Start
			e.add(tree.Span{Start: at, End: at}, text+"\n")
		case old.Package != nil:
			at := old.Package.Pos().End
			e.add(tree.Span{Start: at, End: at}, "\n\n"+text)
		case len(old.Types) > 0:
			at := old.Types[0].Pos().Start
			e.add(tree.Span{Start: at, End: at}, text+"\n\n")
		default:
			e.add(tree.Span{}, text+"\n\n")
		}
	}, e.removeLine)
}
