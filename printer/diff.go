package printer

import (
	"fmt"
	"reflect"

	"github.com/NickyBoy89/propmigrate/tree"
)

// editor collects the edits that turn one tree into another
type editor struct {
	p     *printer
	edits []edit
}

func (e *editor) add(span tree.Span, text string) {
	e.edits = append(e.edits, edit{Span: span, Text: text})
}

func (e *editor) unit(old, updated *tree.SourceUnit) error {
	if err := e.imports(old, updated); err != nil {
		return err
	}
	if err := e.list(tree.Span{Start: len(old.Source), End: len(old.Source)}, nodesOf(old.Types), nodesOf(updated.Types)); err != nil {
		return err
	}
	return e.list(tree.Span{Start: len(old.Source), End: len(old.Source)}, nodesOf(old.Statements), nodesOf(updated.Statements))
}

// diff records the edits that turn a node into its replacement
func (e *editor) diff(old, updated tree.Node) error {
	if nodeEqual(old, updated) {
		return nil
	}
	if updated == nil || isNil(updated) {
		return fmt.Errorf("%T cannot be removed from this position", old)
	}

	// A synthesized node, or a parsed node that was moved here from elsewhere,
	// replaces the old node's text entirely
	if !updated.Pos().Valid() || updated.Pos() != old.Pos() || reflect.TypeOf(old) != reflect.TypeOf(updated) {
		text, err := e.p.render(updated)
		if err != nil {
			return err
		}
		e.add(old.Pos(), text)
		return nil
	}

	// The same node, with some of its contents rewritten
	switch old := old.(type) {
	case *tree.ClassDecl:
		return e.list(closingBrace(old), nodesOf(old.Members), nodesOf(updated.(*tree.ClassDecl).Members))
	case *tree.FieldDecl:
		updated := updated.(*tree.FieldDecl)
		if err := e.modifiers(old.Modifiers, updated.Modifiers, old.Type.Pos()); err != nil {
			return err
		}
		if err := e.diff(old.Type, updated.Type); err != nil {
			return err
		}
		return e.pairs(nodesOf(old.Variables), nodesOf(updated.Variables))
	case *tree.Variable:
		return e.optional(old.Init, updated.(*tree.Variable).Init)
	case *tree.MethodDecl:
		updated := updated.(*tree.MethodDecl)
		anchor := old.Pos()
		if old.ReturnType != nil {
			anchor = old.ReturnType.Pos()
		}
		if err := e.modifiers(old.Modifiers, updated.Modifiers, anchor); err != nil {
			return err
		}
		if err := e.optional(old.ReturnType, updated.ReturnType); err != nil {
			return err
		}
		return e.optional(old.Body, updated.Body)
	case *tree.Block:
		return e.list(closingBrace(old), nodesOf(old.Stmts), nodesOf(updated.(*tree.Block).Stmts))
	case *tree.LocalVar:
		updated := updated.(*tree.LocalVar)
		if err := e.optional(old.Type, updated.Type); err != nil {
			return err
		}
		return e.pairs(nodesOf(old.Variables), nodesOf(updated.Variables))
	case *tree.ExprStmt:
		return e.diff(old.X, updated.(*tree.ExprStmt).X)
	case *tree.Return:
		return e.optional(old.X, updated.(*tree.Return).X)
	case *tree.MethodCall:
		return e.methodCall(old, updated.(*tree.MethodCall))
	case *tree.FieldAccess:
		updated := updated.(*tree.FieldAccess)
		if old.Name != updated.Name {
			return fmt.Errorf("renaming field access %s is not supported", old.Name)
		}
		return e.diff(old.X, updated.X)
	case *tree.New:
		updated := updated.(*tree.New)
		if err := e.pairs(nodesOf(old.Args), nodesOf(updated.Args)); err != nil {
			return err
		}
		return e.list(closingBrace(old), nodesOf(old.Body), nodesOf(updated.Body))
	case *tree.Cast:
		return e.diff(old.X, updated.(*tree.Cast).X)
	case *tree.Paren:
		return e.diff(old.X, updated.(*tree.Paren).X)
	case *tree.Lambda:
		return e.optional(old.Body, updated.(*tree.Lambda).Body)
	case *tree.Opaque:
		return e.pairs(old.Children, updated.(*tree.Opaque).Children)
	}

	// Every other parsed node is a leaf as far as the recipes are concerned,
	// and keeps its text
	return nil
}

// optional diffs a child that may be absent. Adding or removing one is not
// supported, since where its text would go depends on the parent
func (e *editor) optional(old, updated tree.Node) error {
	oldNil, newNil := isNil(old), isNil(updated)
	switch {
	case oldNil && newNil:
		return nil
	case oldNil || newNil:
		return fmt.Errorf("adding or removing a %T is not supported", firstNonNil(old, updated))
	}
	return e.diff(old, updated)
}

// pairs diffs two lists whose elements correspond one to one
func (e *editor) pairs(old, updated []tree.Node) error {
	if len(old) != len(updated) {
		return fmt.Errorf("changing the number of elements from %d to %d is not supported", len(old), len(updated))
	}
	for i := range old {
		if err := e.diff(old[i], updated[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *editor) methodCall(old, updated *tree.MethodCall) error {
	switch {
	case old.Recv == nil && updated.Recv != nil:
		text, err := e.p.render(updated.Recv)
		if err != nil {
			return err
		}
		e.add(tree.Span{Start: old.NameSpan.Start, End: old.NameSpan.Start}, text+".")
	case old.Recv != nil && updated.Recv == nil:
		e.add(tree.Span{Start: old.Recv.Pos().Start, End: old.NameSpan.Start}, "")
	case old.Recv != nil:
		if err := e.diff(old.Recv, updated.Recv); err != nil {
			return err
		}
	}

	if old.Name != updated.Name {
		if !old.NameSpan.Valid() {
			return fmt.Errorf("call to %s has no position for its name", old.Name)
		}
		e.add(old.NameSpan, updated.Name)
	}
	return e.pairs(nodesOf(old.Args), nodesOf(updated.Args))
}

// nodeEqual compares nodes by identity, treating typed nils as nil
func nodeEqual(a, b tree.Node) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	return a == b
}

func isNil(n tree.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func firstNonNil(nodes ...tree.Node) tree.Node {
	for _, n := range nodes {
		if !isNil(n) {
			return n
		}
	}
	return nil
}

// nodesOf converts a slice of any node type to a slice of nodes
func nodesOf[T tree.Node](items []T) []tree.Node {
	nodes := make([]tree.Node, len(items))
	for i, item := range items {
		nodes[i] = item
	}
	return nodes
}
