package parsing

import (
	"strings"

	"github.com/NickyBoy89/propmigrate/nodeutil"
	"github.com/NickyBoy89/propmigrate/tree"
	sitter "github.com/smacker/go-tree-sitter"
)

// block converts a `block`, or the body of a constructor
func (c *converter) block(node *sitter.Node) *tree.Block {
	block := &tree.Block{Span: nodeutil.SpanOf(node)}
	for _, child := range nodeutil.Children(node) {
		if nodeutil.IsComment(child) {
			continue
		}
		block.Stmts = append(block.Stmts, c.stmt(child))
	}
	return block
}

func (c *converter) stmt(node *sitter.Node) tree.Stmt {
	switch node.Type() {
	case "block", "constructor_body":
		return c.block(node)
	case "local_variable_declaration":
		local := &tree.LocalVar{
			Span: nodeutil.SpanOf(node),
			Type: c.typeOf(node.ChildByFieldName("type")),
		}
		for _, child := range nodeutil.Children(node) {
			if child.Type() == "variable_declarator" {
				local.Variables = append(local.Variables, c.variable(child))
			}
		}
		return local
	case "expression_statement":
		return &tree.ExprStmt{Span: nodeutil.SpanOf(node), X: c.expr(node.NamedChild(0))}
	case "return_statement":
		ret := &tree.Return{Span: nodeutil.SpanOf(node)}
		for _, child := range nodeutil.Children(node) {
			if !nodeutil.IsComment(child) {
				ret.X = c.expr(child)
				break
			}
		}
		return ret
	case "ERROR":
		return &tree.Opaque{Span: nodeutil.SpanOf(node), Kind: node.Type()}
	case "enhanced_for_statement":
		// The loop variable is kept as a parameter, so that it is in scope for the body
		loop := &tree.Opaque{Span: nodeutil.SpanOf(node), Kind: node.Type()}
		loop.Children = append(loop.Children, &tree.Param{
			Span: tree.Span{
				Start: int(node.ChildByFieldName("type").StartByte()),
				End:   int(node.ChildByFieldName("name").EndByte()),
			},
			Type: c.typeOf(node.ChildByFieldName("type")),
			Name: c.content(node.ChildByFieldName("name")),
		})
		loop.Children = append(loop.Children, c.expr(node.ChildByFieldName("value")))
		loop.Children = append(loop.Children, c.stmt(node.ChildByFieldName("body")))
		return loop
	}
	return c.opaque(node)
}

func (c *converter) expr(node *sitter.Node) tree.Expr {
	span := nodeutil.SpanOf(node)

	switch node.Type() {
	case "identifier":
		return &tree.Ident{Span: span, Name: c.content(node)}
	case "this":
		return &tree.This{Span: span}
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		kind := tree.IntLiteral
		if strings.HasSuffix(strings.ToLower(c.content(node)), "l") {
			kind = tree.LongLiteral
		}
		return &tree.Literal{Span: span, Kind: kind, Text: c.content(node)}
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		// Floating point literals are doubles unless they are marked otherwise
		kind := tree.DoubleLiteral
		if strings.HasSuffix(strings.ToLower(c.content(node)), "f") && node.Type() == "decimal_floating_point_literal" {
			kind = tree.FloatLiteral
		}
		return &tree.Literal{Span: span, Kind: kind, Text: c.content(node)}
	case "character_literal":
		return &tree.Literal{Span: span, Kind: tree.CharLiteral, Text: c.content(node)}
	case "string_literal", "text_block":
		return &tree.Literal{Span: span, Kind: tree.StringLiteral, Text: c.content(node)}
	case "true", "false":
		return &tree.Literal{Span: span, Kind: tree.BooleanLiteral, Text: c.content(node)}
	case "null_literal":
		return &tree.Literal{Span: span, Kind: tree.NullLiteral, Text: c.content(node)}
	case "method_invocation":
		// A method invocation contains:
		// * The `object` that the method is called on, if there is one
		// * The method's `name`
		// * The `arguments` to the method
		name := node.ChildByFieldName("name")
		call := &tree.MethodCall{
			Span:     span,
			Name:     c.content(name),
			NameSpan: nodeutil.SpanOf(name),
			Args:     c.args(node.ChildByFieldName("arguments")),
		}
		if object := node.ChildByFieldName("object"); object != nil {
			call.Recv = c.expr(object)
		}
		return call
	case "field_access":
		return &tree.FieldAccess{
			Span: span,
			X:    c.expr(node.ChildByFieldName("object")),
			Name: c.content(node.ChildByFieldName("field")),
		}
	case "object_creation_expression":
		creation := &tree.New{
			Span:  span,
			Class: c.typeOf(node.ChildByFieldName("type")),
			Args:  c.args(node.ChildByFieldName("arguments")),
		}
		for _, child := range nodeutil.Children(node) {
			if child.Type() == "class_body" {
				creation.Body = c.members(child)
				// An empty anonymous class still has a body
				if creation.Body == nil {
					creation.Body = []tree.Member{}
				}
			}
		}
		return creation
	case "cast_expression":
		return &tree.Cast{
			Span:   span,
			Target: c.typeOf(node.ChildByFieldName("type")),
			X:      c.expr(node.ChildByFieldName("value")),
		}
	case "parenthesized_expression":
		for _, child := range nodeutil.Children(node) {
			if !nodeutil.IsComment(child) {
				return &tree.Paren{Span: span, X: c.expr(child)}
			}
		}
	case "lambda_expression":
		// Lambdas can either be called with a list of parameters
		// (ex: (n1, n2) -> {}), or with a single identifier
		// (ex: n1 -> {})
		lambda := &tree.Lambda{Span: span}
		params := node.ChildByFieldName("parameters")
		switch params.Type() {
		case "identifier":
			lambda.Params = append(lambda.Params, c.param(params))
		case "formal_parameters":
			lambda.Params = c.params(params)
		case "inferred_parameters":
			for _, param := range nodeutil.Children(params) {
				lambda.Params = append(lambda.Params, c.param(param))
			}
		}
		body := node.ChildByFieldName("body")
		if body.Type() == "block" {
			lambda.Body = c.block(body)
		} else {
			lambda.Body = c.expr(body)
		}
		return lambda
	case "ERROR":
		return &tree.Opaque{Span: span, Kind: node.Type()}
	}

	return c.opaque(node)
}

func (c *converter) args(node *sitter.Node) []tree.Expr {
	if node == nil {
		return nil
	}
	var args []tree.Expr
	for _, child := range nodeutil.Children(node) {
		if !nodeutil.IsComment(child) {
			args = append(args, c.expr(child))
		}
	}
	return args
}

// opaque keeps a node that is not modelled, converting its children so that
// nested expressions are still reachable
func (c *converter) opaque(node *sitter.Node) *tree.Opaque {
	opaque := &tree.Opaque{Span: nodeutil.SpanOf(node), Kind: node.Type()}
	if node.Type() == "ERROR" {
		return opaque
	}
	for _, child := range nodeutil.Children(node) {
		if nodeutil.IsComment(child) {
			continue
		}
		opaque.Children = append(opaque.Children, c.node(child))
	}
	return opaque
}

// node converts a child of an opaque node, whose role is only known by its type
func (c *converter) node(node *sitter.Node) tree.Node {
	switch node.Type() {
	case "block", "local_variable_declaration", "expression_statement", "return_statement",
		"enhanced_for_statement", "constructor_body":
		return c.stmt(node)
	case "class_declaration", "interface_declaration", "enum_declaration",
		"annotation_type_declaration", "record_declaration":
		return c.classDecl(node)
	case "class_body":
		return &tree.Opaque{Span: nodeutil.SpanOf(node), Kind: node.Type(), Children: membersAsNodes(c.members(node))}
	case "formal_parameter", "catch_formal_parameter", "spread_parameter":
		return c.param(node)
	case "formal_parameters":
		params := &tree.Opaque{Span: nodeutil.SpanOf(node), Kind: node.Type()}
		for _, param := range c.params(node) {
			params.Children = append(params.Children, param)
		}
		return params
	case "variable_declarator":
		return c.variable(node)
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type",
		"integral_type", "floating_point_type", "boolean_type", "void_type":
		return c.typeOf(node)
	}
	return c.expr(node)
}

func membersAsNodes(members []tree.Member) []tree.Node {
	nodes := make([]tree.Node, len(members))
	for i, member := range members {
		nodes[i] = member
	}
	return nodes
}
