package tree

import "reflect"

// Children returns the direct children of a node, in source order
func Children(n Node) []Node {
	var children []Node
	add := func(child Node) {
		if !isNil(child) {
			children = append(children, child)
		}
	}

	switch n := n.(type) {
	case *SourceUnit:
		add(n.Package)
		for _, imp := range n.Imports {
			add(imp)
		}
		for _, class := range n.Types {
			add(class)
		}
		for _, stmt := range n.Statements {
			add(stmt)
		}
	case *ClassDecl:
		addAnnotationsAndModifiers(add, n.Annotations, n.Modifiers)
		add(n.Extends)
		for _, iface := range n.Implements {
			add(iface)
		}
		for _, member := range n.Members {
			add(member)
		}
	case *FieldDecl:
		addAnnotationsAndModifiers(add, n.Annotations, n.Modifiers)
		add(n.Type)
		for _, variable := range n.Variables {
			add(variable)
		}
	case *Variable:
		add(n.Init)
	case *MethodDecl:
		addAnnotationsAndModifiers(add, n.Annotations, n.Modifiers)
		add(n.ReturnType)
		for _, param := range n.Params {
			add(param)
		}
		add(n.Body)
	case *Param:
		add(n.Type)
	case *TypeExpr:
		for _, arg := range n.Args {
			add(arg)
		}
		add(n.Bound)
	case *Block:
		for _, stmt := range n.Stmts {
			add(stmt)
		}
	case *LocalVar:
		add(n.Type)
		for _, variable := range n.Variables {
			add(variable)
		}
	case *ExprStmt:
		add(n.X)
	case *Return:
		add(n.X)
	case *MethodCall:
		add(n.Recv)
		for _, arg := range n.Args {
			add(arg)
		}
	case *FieldAccess:
		add(n.X)
	case *New:
		add(n.Class)
		for _, arg := range n.Args {
			add(arg)
		}
		for _, member := range n.Body {
			add(member)
		}
	case *Cast:
		add(n.Target)
		add(n.X)
	case *Paren:
		add(n.X)
	case *Lambda:
		for _, param := range n.Params {
			add(param)
		}
		add(n.Body)
	case *Opaque:
		for _, child := range n.Children {
			add(child)
		}
	}

	return children
}

// Annotations and keyword modifiers may be interleaved in the source
func addAnnotationsAndModifiers(add func(Node), annotations []*Annotation, modifiers []*Modifier) {
	a, m := 0, 0
	for a < len(annotations) || m < len(modifiers) {
		if m == len(modifiers) || (a < len(annotations) && annotations[a].Start <= modifiers[m].Start) {
			add(annotations[a])
			a++
		} else {
			add(modifiers[m])
			m++
		}
	}
}

// isNil catches typed nil pointers stored in interfaces
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Cursor is a position in a tree, remembering the path from the root
type Cursor struct {
	parent *Cursor
	node   Node
}

// NewCursor starts a cursor at the root of a tree
func NewCursor(root Node) *Cursor {
	return &Cursor{node: root}
}

// Child descends into one of the node's children
func (c *Cursor) Child(n Node) *Cursor {
	return &Cursor{parent: c, node: n}
}

func (c *Cursor) Node() Node {
	return c.node
}

// Parent returns the cursor for the enclosing node, or nil at the root
func (c *Cursor) Parent() *Cursor {
	return c.parent
}

// EnclosingClass returns the nearest class declaration that strictly contains
// the cursor's node. Inside the body of an anonymous class there is none, as
// that body declares a class of its own
func (c *Cursor) EnclosingClass() *ClassDecl {
	for p := c.parent; p != nil; p = p.parent {
		switch n := p.node.(type) {
		case *ClassDecl:
			return n
		case *New:
			if n.Body != nil {
				return nil
			}
		}
	}
	return nil
}

// Unit returns the unit at the root of the cursor's path
func (c *Cursor) Unit() *SourceUnit {
	p := c
	for p.parent != nil {
		p = p.parent
	}
	unit, _ := p.node.(*SourceUnit)
	return unit
}

// Inspect walks the tree in depth-first order, calling visit for every node.
// Returning false from visit skips the node's children
func Inspect(root Node, visit func(c *Cursor) bool) {
	inspect(NewCursor(root), visit)
}

func inspect(c *Cursor, visit func(c *Cursor) bool) {
	if !visit(c) {
		return
	}
	for _, child := range Children(c.node) {
		inspect(c.Child(child), visit)
	}
}
