package astutil

import (
	"fmt"
	"strings"

	"github.com/NickyBoy89/propmigrate/nodeutil"
	"github.com/NickyBoy89/propmigrate/tree"
	sitter "github.com/smacker/go-tree-sitter"
)

// ParseType converts any of the grammar's type nodes into a type expression
func ParseType(node *sitter.Node, source []byte) (*tree.TypeExpr, error) {
	expr := &tree.TypeExpr{Span: nodeutil.SpanOf(node)}

	switch node.Type() {
	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		// Either the keyword itself, or a wrapper around the keyword
		expr.Name = node.Content(source)
	case "type_identifier", "scoped_type_identifier":
		// Scoped identifiers refer to nested or fully-qualified types
		// Ex: Map.Entry, java.util.List
		expr.Name = node.Content(source)
	case "generic_type":
		// A generic type is any type that is of the form GenericType<T>
		for _, child := range nodeutil.Children(node) {
			switch child.Type() {
			case "type_identifier", "scoped_type_identifier":
				expr.Name = child.Content(source)
			case "type_arguments":
				for _, arg := range nodeutil.Children(child) {
					if nodeutil.IsComment(arg) {
						continue
					}
					parsed, err := ParseType(arg, source)
					if err != nil {
						return nil, err
					}
					expr.Args = append(expr.Args, parsed)
				}
			}
		}
	case "array_type":
		element, err := ParseType(node.ChildByFieldName("element"), source)
		if err != nil {
			return nil, err
		}
		element.Span = expr.Span
		element.Dims += strings.Count(node.ChildByFieldName("dimensions").Content(source), "[")
		return element, nil
	case "wildcard":
		expr.Name = "?"
		for _, child := range nodeutil.UnnamedChildren(node) {
			switch child.Type() {
			case "super":
				expr.Super = true
			case "extends", "annotation", "marker_annotation":
			default:
				if !child.IsNamed() {
					continue
				}
				bound, err := ParseType(child, source)
				if err != nil {
					return nil, err
				}
				expr.Bound = bound
			}
		}
	case "annotated_type":
		// Type annotations are kept in the source text but otherwise ignored
		last := node.NamedChild(int(node.NamedChildCount()) - 1)
		inner, err := ParseType(last, source)
		if err != nil {
			return nil, err
		}
		inner.Span = expr.Span
		return inner, nil
	default:
		return nil, fmt.Errorf("unknown type to convert: %s", node.Type())
	}

	return expr, nil
}
