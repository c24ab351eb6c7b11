package nodeutil

import (
	"github.com/NickyBoy89/propmigrate/tree"
	sitter "github.com/smacker/go-tree-sitter"
)

// Children returns the named children of a node
func Children(node *sitter.Node) []*sitter.Node {
	count := int(node.NamedChildCount())
	children := make([]*sitter.Node, count)
	for i := 0; i < count; i++ {
		children[i] = node.NamedChild(i)
	}
	return children
}

// UnnamedChildren returns every child of a node, including punctuation and keywords
func UnnamedChildren(node *sitter.Node) []*sitter.Node {
	count := int(node.ChildCount())
	children := make([]*sitter.Node, count)
	for i := 0; i < count; i++ {
		children[i] = node.Child(i)
	}
	return children
}

// SpanOf returns the byte range that a node was parsed from
func SpanOf(node *sitter.Node) tree.Span {
	return tree.Span{Start: int(node.StartByte()), End: int(node.EndByte())}
}

// IsComment reports whether the node is one of the grammar's comment nodes
func IsComment(node *sitter.Node) bool {
	switch node.Type() {
	case "comment", "line_comment", "block_comment":
		return true
	}
	return false
}

// Problem is the position of a node that the parser could not make sense of
type Problem struct {
	Line, Column int
	Span         tree.Span
	// Missing is set when the parser inserted a node that was not in the source
	Missing bool
	Text    string
}

// Problems lists every error and missing node under the given node
func Problems(node *sitter.Node, source []byte) []Problem {
	if !node.HasError() {
		return nil
	}
	var problems []Problem
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.IsMissing() || n.Type() == "ERROR" {
			point := n.StartPoint()
			problem := Problem{
				Line:    int(point.Row) + 1,
				Column:  int(point.Column) + 1,
				Span:    SpanOf(n),
				Missing: n.IsMissing(),
				Text:    n.Content(source),
			}
			// Missing nodes have no text, so name what was expected instead
			if problem.Missing {
				problem.Text = n.Type()
			}
			problems = append(problems, problem)
			if n.IsMissing() {
				return
			}
		}
		for _, child := range UnnamedChildren(n) {
			if child.HasError() || child.IsMissing() {
				walk(child)
			}
		}
	}
	walk(node)
	return problems
}
