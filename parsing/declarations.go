package parsing

import (
	"bytes"
	"fmt"

	"github.com/NickyBoy89/propmigrate/astutil"
	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/keywords"
	"github.com/NickyBoy89/propmigrate/nodeutil"
	"github.com/NickyBoy89/propmigrate/tree"
	sitter "github.com/smacker/go-tree-sitter"
)

var declarationKinds = map[string]javatype.Kind{
	"class_declaration":           javatype.KindClass,
	"interface_declaration":       javatype.KindInterface,
	"enum_declaration":            javatype.KindEnum,
	"annotation_type_declaration": javatype.KindAnnotation,
	"record_declaration":          javatype.KindRecord,
}

// classDecl converts any class-like declaration
func (c *converter) classDecl(node *sitter.Node) *tree.ClassDecl {
	kind, ok := declarationKinds[node.Type()]
	if !ok {
		panic(fmt.Sprintf("unknown declaration type: %s", node.Type()))
	}

	// A class declaration contains:
	// * The `modifiers` of the class
	// * An `identifier` for the name of the class
	// * `type_parameters` if the class is a generic class
	// * A `superclass` and `super_interfaces`, or `extends_interfaces` for interfaces
	// * The body of the class, whose type depends on the kind of declaration
	decl := &tree.ClassDecl{
		Span: nodeutil.SpanOf(node),
		Kind: kind,
		Name: c.content(node.ChildByFieldName("name")),
	}

	for _, child := range nodeutil.Children(node) {
		switch child.Type() {
		case "modifiers":
			decl.Annotations, decl.Modifiers = c.modifiers(child)
		case "type_parameters":
			decl.TypeParams = c.typeParameters(child)
		case "superclass":
			decl.Extends = c.typeOf(child.NamedChild(0))
		case "super_interfaces", "extends_interfaces":
			for _, list := range nodeutil.Children(child) {
				for _, iface := range nodeutil.Children(list) {
					decl.Implements = append(decl.Implements, c.typeOf(iface))
				}
			}
		case "class_body", "interface_body", "annotation_type_body":
			decl.Members = c.members(child)
		case "enum_body":
			decl.Members = c.enumBody(child)
		}
	}

	return decl
}

// typeParameters returns the names of a declaration's type parameters,
// leaving their bounds in the source
func (c *converter) typeParameters(node *sitter.Node) []string {
	var names []string
	for _, param := range nodeutil.Children(node) {
		if param.Type() != "type_parameter" {
			continue
		}
		for _, child := range nodeutil.Children(param) {
			if child.Type() == "type_identifier" || child.Type() == "identifier" {
				names = append(names, c.content(child))
				break
			}
		}
	}
	return names
}

// members converts the contents of a class body. Comments that sit on their
// own lines directly above a member become part of that member, so that
// deleting the member removes its documentation too
func (c *converter) members(body *sitter.Node) []tree.Member {
	var members []tree.Member
	commentStart := -1
	for _, child := range nodeutil.Children(body) {
		if nodeutil.IsComment(child) {
			if commentStart < 0 && c.startsLine(child) {
				commentStart = int(child.StartByte())
			}
			continue
		}

		member := c.member(child)
		if member == nil {
			commentStart = -1
			continue
		}
		if commentStart >= 0 {
			member = withStart(member, commentStart)
		}
		commentStart = -1
		members = append(members, member)
	}
	return members
}

// startsLine reports whether only whitespace precedes the node on its line
func (c *converter) startsLine(node *sitter.Node) bool {
	start := int(node.StartByte())
	line := bytes.LastIndexByte(c.source[:start], '\n')
	return len(bytes.TrimSpace(c.source[line+1:start])) == 0
}

func withStart(member tree.Member, start int) tree.Member {
	switch m := member.(type) {
	case *tree.FieldDecl:
		m.Start = start
	case *tree.MethodDecl:
		m.Start = start
	case *tree.ClassDecl:
		m.Start = start
	case *tree.Opaque:
		m.Start = start
	}
	return member
}

func (c *converter) member(node *sitter.Node) tree.Member {
	switch node.Type() {
	case "field_declaration", "constant_declaration":
		return c.fieldDecl(node)
	case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
		return c.methodDecl(node)
	case "class_declaration", "interface_declaration", "enum_declaration",
		"annotation_type_declaration", "record_declaration":
		return c.classDecl(node)
	case "ERROR":
		return &tree.Opaque{Span: nodeutil.SpanOf(node), Kind: node.Type()}
	}
	// Initializer blocks, annotation elements, and anything else
	return c.opaque(node)
}

// enumBody converts the constants of an enum, followed by any of its other members
func (c *converter) enumBody(node *sitter.Node) []tree.Member {
	var members []tree.Member
	for _, child := range nodeutil.Children(node) {
		switch child.Type() {
		case "enum_constant":
			members = append(members, c.opaque(child))
		case "enum_body_declarations":
			members = append(members, c.members(child)...)
		}
	}
	return members
}

// modifiers splits a `modifiers` node into its annotations and keywords
func (c *converter) modifiers(node *sitter.Node) ([]*tree.Annotation, []*tree.Modifier) {
	nodeutil.AssertTypeIs(node, "modifiers")

	var annotations []*tree.Annotation
	var modifiers []*tree.Modifier
	for _, child := range nodeutil.UnnamedChildren(node) {
		switch child.Type() {
		case "marker_annotation", "annotation":
			annotations = append(annotations, &tree.Annotation{
				Span: nodeutil.SpanOf(child),
				Name: c.content(child.ChildByFieldName("name")),
			})
		default:
			if !keywords.IsModifier(child.Type()) {
				continue
			}
			modifiers = append(modifiers, &tree.Modifier{
				Span:    nodeutil.SpanOf(child),
				Keyword: child.Type(),
			})
		}
	}
	return annotations, modifiers
}

func (c *converter) fieldDecl(node *sitter.Node) *tree.FieldDecl {
	// A field declaration contains:
	// * The `modifiers` of the field, if there are any
	// * The type of every declared variable
	// * One or more `variable_declarator`s
	field := &tree.FieldDecl{
		Span: nodeutil.SpanOf(node),
		Type: c.typeOf(node.ChildByFieldName("type")),
	}
	for _, child := range nodeutil.Children(node) {
		switch child.Type() {
		case "modifiers":
			field.Annotations, field.Modifiers = c.modifiers(child)
		case "variable_declarator":
			field.Variables = append(field.Variables, c.variable(child))
		}
	}
	return field
}

func (c *converter) variable(node *sitter.Node) *tree.Variable {
	nodeutil.AssertTypeIs(node, "variable_declarator")

	variable := &tree.Variable{
		Span: nodeutil.SpanOf(node),
		Name: c.content(node.ChildByFieldName("name")),
	}
	if dims := node.ChildByFieldName("dimensions"); dims != nil {
		variable.Dims = bytes.Count([]byte(c.content(dims)), []byte("["))
	}
	if value := node.ChildByFieldName("value"); value != nil {
		variable.Init = c.expr(value)
	}
	return variable
}

func (c *converter) methodDecl(node *sitter.Node) *tree.MethodDecl {
	// A method declaration contains:
	// * The `modifiers` of the method, if there are any
	// * `type_parameters` for generic methods
	// * The return type, which constructors do not have
	// * The method's name, and its `formal_parameters`
	// * A body, which abstract and interface methods do not have
	method := &tree.MethodDecl{
		Span: nodeutil.SpanOf(node),
		Name: c.content(node.ChildByFieldName("name")),
	}

	for _, child := range nodeutil.Children(node) {
		switch child.Type() {
		case "modifiers":
			method.Annotations, method.Modifiers = c.modifiers(child)
		case "type_parameters":
			method.TypeParams = c.typeParameters(child)
		}
	}

	if node.Type() == "method_declaration" {
		method.ReturnType = c.typeOf(node.ChildByFieldName("type"))
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		method.Params = c.params(params)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		method.Body = c.block(body)
	}

	return method
}

func (c *converter) params(node *sitter.Node) []*tree.Param {
	nodeutil.AssertTypeIs(node, "formal_parameters")

	var params []*tree.Param
	for _, child := range nodeutil.Children(node) {
		switch child.Type() {
		case "formal_parameter", "spread_parameter":
			params = append(params, c.param(child))
		}
	}
	return params
}

// param converts formal, variadic and catch clause parameters
func (c *converter) param(node *sitter.Node) *tree.Param {
	param := &tree.Param{Span: nodeutil.SpanOf(node)}

	switch node.Type() {
	case "formal_parameter":
		param.Type = c.typeOf(node.ChildByFieldName("type"))
		param.Name = c.content(node.ChildByFieldName("name"))
		if dims := node.ChildByFieldName("dimensions"); dims != nil {
			param.Type.Dims += bytes.Count([]byte(c.content(dims)), []byte("["))
		}
	case "spread_parameter":
		// A spread parameter is written as `Type... name`, and has no field names
		for _, child := range nodeutil.Children(node) {
			switch child.Type() {
			case "modifiers":
			case "variable_declarator":
				param.Name = c.content(child.ChildByFieldName("name"))
			default:
				if param.Type == nil {
					param.Type = c.typeOf(child)
				}
			}
		}
		param.Varargs = true
	case "catch_formal_parameter":
		// Multi-catch parameters are typed by their first alternative
		for _, child := range nodeutil.Children(node) {
			if child.Type() == "catch_type" {
				param.Type = c.typeOf(child.NamedChild(0))
			}
		}
		param.Name = c.content(node.ChildByFieldName("name"))
	case "identifier":
		// Untyped lambda parameters
		param.Name = c.content(node)
	default:
		panic(fmt.Sprintf("unknown parameter type: %s", node.Type()))
	}

	return param
}

func (c *converter) typeOf(node *sitter.Node) *tree.TypeExpr {
	if node == nil {
		return nil
	}
	expr, err := astutil.ParseType(node, c.source)
	if err != nil {
		panic(err)
	}
	return expr
}
