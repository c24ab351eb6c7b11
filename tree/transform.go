package tree

import "fmt"

// Visitor rewrites a tree. Every hook is called after the node's children have
// been rewritten, and receives a cursor positioned on the original node, along
// with the node as it stands after its children were rewritten. Returning the
// node unchanged keeps it, and returning a different node replaces it
type Visitor interface {
	VisitClass(c *Cursor, class *ClassDecl) (*ClassDecl, error)
	// VisitMember may return nil to delete the member from its class
	VisitMember(c *Cursor, member Member) (Member, error)
	VisitStmt(c *Cursor, stmt Stmt) (Stmt, error)
	VisitExpr(c *Cursor, expr Expr) (Expr, error)
}

// BaseVisitor leaves everything unchanged, and is meant to be embedded in
// visitors that only care about some kinds of nodes
type BaseVisitor struct{}

func (BaseVisitor) VisitClass(_ *Cursor, class *ClassDecl) (*ClassDecl, error) { return class, nil }
func (BaseVisitor) VisitMember(_ *Cursor, member Member) (Member, error)     { return member, nil }
func (BaseVisitor) VisitStmt(_ *Cursor, stmt Stmt) (Stmt, error)             { return stmt, nil }
func (BaseVisitor) VisitExpr(_ *Cursor, expr Expr) (Expr, error)             { return expr, nil }

// Transform applies a visitor to every declaration, statement and expression
// in the unit. Nothing in the original tree is modified: the returned unit
// shares every subtree that the visitor left alone, and is the original unit
// itself if nothing changed at all
func Transform(u *SourceUnit, v Visitor) (*SourceUnit, error) {
	t := transformer{v: v}
	root := NewCursor(u)

	types := make([]*ClassDecl, 0, len(u.Types))
	changed := false
	for _, class := range u.Types {
		updated, err := t.class(root.Child(class), class)
		if err != nil {
			return nil, err
		}
		if updated != class {
			changed = true
		}
		if updated != nil {
			types = append(types, updated)
		}
	}

	stmts := make([]Stmt, 0, len(u.Statements))
	for _, stmt := range u.Statements {
		updated, err := t.stmt(root.Child(stmt), stmt)
		if err != nil {
			return nil, err
		}
		if updated != stmt {
			changed = true
		}
		if updated != nil {
			stmts = append(stmts, updated)
		}
	}

	if !changed {
		return u, nil
	}
	clone := *u
	clone.Types = types
	clone.Statements = stmts
	return &clone, nil
}

type transformer struct {
	v Visitor
}

func (t transformer) class(c *Cursor, class *ClassDecl) (*ClassDecl, error) {
	members, changed, err := t.members(c, class.Members)
	if err != nil {
		return nil, err
	}
	if changed {
		class = class.WithMembers(members)
	}
	return t.v.VisitClass(c, class)
}

func (t transformer) members(parent *Cursor, members []Member) ([]Member, bool, error) {
	result := make([]Member, 0, len(members))
	changed := false
	for _, member := range members {
		updated, err := t.member(parent.Child(member), member)
		if err != nil {
			return nil, false, err
		}
		if updated != member {
			changed = true
		}
		if updated != nil {
			result = append(result, updated)
		}
	}
	return result, changed, nil
}

// member returns nil when the member was deleted
func (t transformer) member(c *Cursor, member Member) (Member, error) {
	var updated Member
	switch member := member.(type) {
	case *ClassDecl:
		class, err := t.class(c, member)
		if err != nil {
			return nil, err
		}
		if class == nil {
			return nil, nil
		}
		updated = class
	case *FieldDecl:
		variables, changed, err := t.variables(c, member.Variables)
		if err != nil {
			return nil, err
		}
		updated = member
		if changed {
			updated = member.WithVariables(variables)
		}
	case *MethodDecl:
		updated = member
		if member.Body != nil {
			body, err := t.stmt(c.Child(member.Body), member.Body)
			if err != nil {
				return nil, err
			}
			if body != Stmt(member.Body) {
				block, ok := body.(*Block)
				if !ok {
					return nil, fmt.Errorf("method %s: body must remain a block, got %T", member.Name, body)
				}
				clone := *member
				clone.Body = block
				updated = &clone
			}
		}
	case *Opaque:
		opaque, err := t.opaque(c, member)
		if err != nil {
			return nil, err
		}
		updated = opaque
	default:
		return nil, fmt.Errorf("unknown member type %T", member)
	}
	return t.v.VisitMember(c, updated)
}

func (t transformer) variables(parent *Cursor, variables []*Variable) ([]*Variable, bool, error) {
	result := make([]*Variable, len(variables))
	changed := false
	for i, variable := range variables {
		result[i] = variable
		if variable.Init == nil {
			continue
		}
		init, err := t.expr(parent.Child(variable).Child(variable.Init), variable.Init)
		if err != nil {
			return nil, false, err
		}
		if init != variable.Init {
			clone := *variable
			clone.Init = init
			result[i] = &clone
			changed = true
		}
	}
	return result, changed, nil
}

func (t transformer) stmt(c *Cursor, stmt Stmt) (Stmt, error) {
	var updated Stmt
	switch stmt := stmt.(type) {
	case *Block:
		stmts := make([]Stmt, 0, len(stmt.Stmts))
		changed := false
		for _, child := range stmt.Stmts {
			result, err := t.stmt(c.Child(child), child)
			if err != nil {
				return nil, err
			}
			if result != child {
				changed = true
			}
			if result != nil {
				stmts = append(stmts, result)
			}
		}
		updated = stmt
		if changed {
			clone := *stmt
			clone.Stmts = stmts
			updated = &clone
		}
	case *LocalVar:
		variables, changed, err := t.variables(c, stmt.Variables)
		if err != nil {
			return nil, err
		}
		updated = stmt
		if changed {
			clone := *stmt
			clone.Variables = variables
			updated = &clone
		}
	case *ExprStmt:
		x, err := t.expr(c.Child(stmt.X), stmt.X)
		if err != nil {
			return nil, err
		}
		updated = stmt
		if x != stmt.X {
			clone := *stmt
			clone.X = x
			updated = &clone
		}
	case *Return:
		updated = stmt
		if stmt.X != nil {
			x, err := t.expr(c.Child(stmt.X), stmt.X)
			if err != nil {
				return nil, err
			}
			if x != stmt.X {
				clone := *stmt
				clone.X = x
				updated = &clone
			}
		}
	case *Opaque:
		opaque, err := t.opaque(c, stmt)
		if err != nil {
			return nil, err
		}
		updated = opaque
	default:
		return nil, fmt.Errorf("unknown statement type %T", stmt)
	}
	return t.v.VisitStmt(c, updated)
}

func (t transformer) expr(c *Cursor, expr Expr) (Expr, error) {
	var updated Expr
	switch expr := expr.(type) {
	case *Ident, *This, *Literal:
		updated = expr
	case *MethodCall:
		updated = expr
		recv := expr.Recv
		if recv != nil {
			var err error
			if recv, err = t.expr(c.Child(recv), recv); err != nil {
				return nil, err
			}
		}
		args, changed, err := t.exprs(c, expr.Args)
		if err != nil {
			return nil, err
		}
		if changed || recv != expr.Recv {
			clone := *expr
			clone.Recv = recv
			clone.Args = args
			updated = &clone
		}
	case *FieldAccess:
		x, err := t.expr(c.Child(expr.X), expr.X)
		if err != nil {
			return nil, err
		}
		updated = expr
		if x != expr.X {
			clone := *expr
			clone.X = x
			updated = &clone
		}
	case *New:
		args, argsChanged, err := t.exprs(c, expr.Args)
		if err != nil {
			return nil, err
		}
		body, bodyChanged, err := t.members(c, expr.Body)
		if err != nil {
			return nil, err
		}
		updated = expr
		if argsChanged || bodyChanged {
			clone := *expr
			clone.Args = args
			if expr.Body != nil {
				clone.Body = body
			}
			updated = &clone
		}
	case *Cast:
		x, err := t.expr(c.Child(expr.X), expr.X)
		if err != nil {
			return nil, err
		}
		updated = expr
		if x != expr.X {
			clone := *expr
			clone.X = x
			updated = &clone
		}
	case *Paren:
		x, err := t.expr(c.Child(expr.X), expr.X)
		if err != nil {
			return nil, err
		}
		updated = expr
		if x != expr.X {
			clone := *expr
			clone.X = x
			updated = &clone
		}
	case *Lambda:
		updated = expr
		if expr.Body != nil {
			body, err := t.node(c.Child(expr.Body), expr.Body)
			if err != nil {
				return nil, err
			}
			if body != expr.Body {
				clone := *expr
				clone.Body = body
				updated = &clone
			}
		}
	case *Opaque:
		opaque, err := t.opaque(c, expr)
		if err != nil {
			return nil, err
		}
		updated = opaque
	default:
		return nil, fmt.Errorf("unknown expression type %T", expr)
	}

	result, err := t.v.VisitExpr(c, updated)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("expression %T cannot be removed", expr)
	}
	return result, nil
}

func (t transformer) exprs(parent *Cursor, exprs []Expr) ([]Expr, bool, error) {
	result := make([]Expr, len(exprs))
	changed := false
	for i, expr := range exprs {
		updated, err := t.expr(parent.Child(expr), expr)
		if err != nil {
			return nil, false, err
		}
		if updated != expr {
			changed = true
		}
		result[i] = updated
	}
	return result, changed, nil
}

// opaque rewrites the children of an opaque node, without calling a hook on
// the node itself
func (t transformer) opaque(c *Cursor, opaque *Opaque) (*Opaque, error) {
	children := make([]Node, len(opaque.Children))
	changed := false
	for i, child := range opaque.Children {
		updated, err := t.node(c.Child(child), child)
		if err != nil {
			return nil, err
		}
		if updated != child {
			changed = true
		}
		children[i] = updated
	}
	if !changed {
		return opaque, nil
	}
	clone := *opaque
	clone.Children = children
	return &clone, nil
}

// node dispatches a child whose role is not fixed by its parent
func (t transformer) node(c *Cursor, n Node) (Node, error) {
	switch n := n.(type) {
	case *Opaque:
		return t.opaque(c, n)
	case Expr:
		return t.expr(c, n)
	case Stmt:
		return t.stmt(c, n)
	case Member:
		member, err := t.member(c, n)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, fmt.Errorf("%T cannot be removed from this position", n)
		}
		return member, nil
	}
	// Types, parameters and other leaves are never rewritten
	return n, nil
}
