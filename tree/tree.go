// Package tree holds the syntax tree that the migration recipes read and rewrite.
//
// Trees are persistent: once a unit has been parsed and attributed, nothing
// mutates its nodes. A rewrite builds new nodes for whatever it changes, and
// shares every untouched subtree with the original by pointer. Nodes parsed
// from text carry the Span they were read from, while synthesized nodes carry
// the zero Span, which is how the printer tells the two apart.
package tree

import (
	"path/filepath"
	"strings"

	"github.com/NickyBoy89/propmigrate/javatype"
)

// Span is a range of byte offsets into a unit's source
type Span struct {
	Start, End int
}

// Pos returns the span itself, so that every node embedding a Span satisfies Node
func (s Span) Pos() Span { return s }

// Valid reports whether the span came from parsed text
func (s Span) Valid() bool { return s.End > s.Start }

// Text returns the source text that the span covers
func (s Span) Text(source []byte) string {
	if !s.Valid() || s.End > len(source) {
		return ""
	}
	return string(source[s.Start:s.End])
}

// Node is any element of the tree
type Node interface {
	Pos() Span
}

// Member is anything declared in the body of a class
type Member interface {
	Node
	memberNode()
}

// Stmt is a statement inside of a method body
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression, annotated with its static type once attributed
type Expr interface {
	Node
	// Type returns the resolved static type of the expression, or nil if it could
	// not be resolved
	Type() javatype.Type
	SetType(t javatype.Type)
	exprNode()
}

// Dialect is the language that a unit is written in
type Dialect int

const (
	Java Dialect = iota
	// Groovy is loosely-typed, and accesses bean properties without their accessors
	Groovy
)

func (d Dialect) String() string {
	if d == Groovy {
		return "groovy"
	}
	return "java"
}

// DialectOf picks the dialect of a file from its extension
func DialectOf(path string) Dialect {
	if strings.EqualFold(filepath.Ext(path), ".groovy") {
		return Groovy
	}
	return Java
}

// SourceUnit is a single parsed file
type SourceUnit struct {
	Span
	Path    string
	Dialect Dialect
	Source  []byte
	Package *PackageDecl
	Imports []*Import
	Types   []*ClassDecl
	// Statements holds the top-level statements of scripts
	Statements []Stmt
	// Unparsed lists the regions of the source that could not be parsed
	Unparsed []Span
}

// WithImports returns a copy of the unit with a different import list
func (u *SourceUnit) WithImports(imports []*Import) *SourceUnit {
	clone := *u
	clone.Imports = imports
	return &clone
}

// PackageName returns the unit's package, or an empty string for the default package
func (u *SourceUnit) PackageName() string {
	if u.Package == nil {
		return ""
	}
	return u.Package.Name
}

type PackageDecl struct {
	Span
	Name string
}

// Import is an import declaration. Wildcard imports leave the `.*` off of Path
type Import struct {
	Span
	Path     string
	Static   bool
	Wildcard bool
}

// NewImport synthesizes a single-type import
func NewImport(path string) *Import {
	return &Import{Path: path}
}

// Annotation is an annotation applied to a declaration, with its arguments
// left in the source text
type Annotation struct {
	Span
	Name string
	// Type is the annotation's class, once resolved
	Type *javatype.Class
}

// Modifier is a keyword modifier, such as `private` or `final`
type Modifier struct {
	Span
	Keyword string
}

func NewModifier(keyword string) *Modifier {
	return &Modifier{Keyword: keyword}
}

// HasModifier reports whether any of the modifiers is the given keyword
func HasModifier(modifiers []*Modifier, keyword string) bool {
	for _, modifier := range modifiers {
		if modifier.Keyword == keyword {
			return true
		}
	}
	return false
}

// TypeExpr is a type, as written in the source
type TypeExpr struct {
	Span
	// Name is the type's name as written, such as `String`, `Map.Entry`, or `?`
	Name string
	Args []*TypeExpr
	// Bound is the bound of a wildcard type argument
	Bound *TypeExpr
	// Super is set when the wildcard's bound is a lower bound
	Super bool
	Dims  int
	// Resolved is the type that the expression names, once resolved
	Resolved javatype.Type
}

// NewTypeExpr synthesizes a type expression
func NewTypeExpr(name string, resolved javatype.Type, args ...*TypeExpr) *TypeExpr {
	return &TypeExpr{Name: name, Args: args, Resolved: resolved}
}

// ClassDecl is a class, interface, enum, annotation or record declaration. A
// nested declaration is also a member of its enclosing class
type ClassDecl struct {
	Span
	Kind        javatype.Kind
	Annotations []*Annotation
	Modifiers   []*Modifier
	Name        string
	TypeParams  []string
	Extends     *TypeExpr
	Implements  []*TypeExpr
	Members     []Member
	Class       *javatype.Class
}

// WithMembers returns a copy of the declaration with a different member list
func (c *ClassDecl) WithMembers(members []Member) *ClassDecl {
	clone := *c
	clone.Members = members
	return &clone
}

// FieldDecl declares one or more fields of the same type
type FieldDecl struct {
	Span
	Annotations []*Annotation
	Modifiers   []*Modifier
	Type        *TypeExpr
	Variables   []*Variable
}

// WithType returns a copy of the declaration with a different declared type
func (f *FieldDecl) WithType(t *TypeExpr) *FieldDecl {
	clone := *f
	clone.Type = t
	return &clone
}

// WithModifiers returns a copy of the declaration with a different modifier list
func (f *FieldDecl) WithModifiers(modifiers []*Modifier) *FieldDecl {
	clone := *f
	clone.Modifiers = modifiers
	return &clone
}

// WithVariables returns a copy of the declaration with different declarators
func (f *FieldDecl) WithVariables(variables []*Variable) *FieldDecl {
	clone := *f
	clone.Variables = variables
	return &clone
}

// Variable is a single declarator of a field or local variable
type Variable struct {
	Span
	Name string
	Dims int
	Init Expr
	// Field is the resolved field, for field declarators
	Field *javatype.Field
}

// WithField returns a copy of the declarator bound to a different field
func (v *Variable) WithField(field *javatype.Field) *Variable {
	clone := *v
	clone.Field = field
	return &clone
}

// MethodDecl is a method or constructor declaration
type MethodDecl struct {
	Span
	Annotations []*Annotation
	Modifiers   []*Modifier
	TypeParams  []string
	// ReturnType is nil for constructors
	ReturnType *TypeExpr
	Name       string
	Params     []*Param
	// Body is nil for abstract and interface methods
	Body   *Block
	Method *javatype.Method
}

// IsConstructor reports whether the declaration is a constructor
func (m *MethodDecl) IsConstructor() bool {
	return m.ReturnType == nil
}

// WithReturnType returns a copy of the declaration returning a different type
func (m *MethodDecl) WithReturnType(t *TypeExpr) *MethodDecl {
	clone := *m
	clone.ReturnType = t
	return &clone
}

// WithMethod returns a copy of the declaration bound to a different signature
func (m *MethodDecl) WithMethod(method *javatype.Method) *MethodDecl {
	clone := *m
	clone.Method = method
	return &clone
}

// HasAnnotation reports whether the method carries an annotation resolving to
// the given class
func (m *MethodDecl) HasAnnotation(fqn string) bool {
	for _, annotation := range m.Annotations {
		if annotation.Type != nil && annotation.Type.FQN == fqn {
			return true
		}
	}
	return false
}

// Param is a formal parameter of a method, lambda, catch clause or loop
type Param struct {
	Span
	Type    *TypeExpr
	Name    string
	Varargs bool
}

// Block is a braced list of statements
type Block struct {
	Span
	Stmts []Stmt
}

// LocalVar declares local variables
type LocalVar struct {
	Span
	Type      *TypeExpr
	Variables []*Variable
}

// ExprStmt is an expression evaluated for its side effects
type ExprStmt struct {
	Span
	X Expr
}

type Return struct {
	Span
	// X is nil for a bare `return`
	X Expr
}

// Typed holds the resolved type of an expression
type Typed struct {
	Resolved javatype.Type
}

func (t *Typed) Type() javatype.Type     { return t.Resolved }
func (t *Typed) SetType(r javatype.Type) { t.Resolved = r }

type Ident struct {
	Span
	Typed
	Name string
}

// NewIdent synthesizes an identifier
func NewIdent(name string) *Ident {
	return &Ident{Name: name}
}

type This struct {
	Span
	Typed
}

// LiteralKind is the syntactic category of a literal
type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	LongLiteral
	FloatLiteral
	DoubleLiteral
	CharLiteral
	StringLiteral
	BooleanLiteral
	NullLiteral
)

type Literal struct {
	Span
	Typed
	Kind LiteralKind
	Text string
}

// MethodCall is a method invocation, with or without an explicit receiver
type MethodCall struct {
	Span
	Typed
	// Recv is nil for unqualified calls
	Recv     Expr
	Name     string
	NameSpan Span
	Args     []Expr
	// Method is the invoked signature, once resolved
	Method *javatype.Method
}

// NewMethodCall synthesizes a method invocation
func NewMethodCall(recv Expr, name string, args ...Expr) *MethodCall {
	return &MethodCall{Recv: recv, Name: name, Args: args}
}

// WithMethod returns a copy of the call bound to a different signature, and
// typed by its return type
func (m *MethodCall) WithMethod(method *javatype.Method) *MethodCall {
	clone := *m
	clone.Method = method
	if method != nil {
		clone.Resolved = method.Return
	}
	return &clone
}

// FieldAccess is a qualified field reference, or a Groovy property access
type FieldAccess struct {
	Span
	Typed
	X    Expr
	Name string
}

// NewFieldAccess synthesizes a field access
func NewFieldAccess(x Expr, name string) *FieldAccess {
	return &FieldAccess{X: x, Name: name}
}

// New is an instance creation expression, with an optional anonymous class body
type New struct {
	Span
	Typed
	Class *TypeExpr
	Args  []Expr
	Body  []Member
}

type Cast struct {
	Span
	Typed
	Target *TypeExpr
	X      Expr
}

type Paren struct {
	Span
	Typed
	X Expr
}

// Lambda is a lambda expression, or a Groovy closure
type Lambda struct {
	Span
	Typed
	Params []*Param
	// Body is either an Expr or a *Block
	Body Node
}

// Opaque is any construct that the recipes do not look into. It still holds
// its children, so that traversals reach the expressions nested inside of it
type Opaque struct {
	Span
	Typed
	Kind     string
	Children []Node
}

func (*ClassDecl) memberNode()  {}
func (*FieldDecl) memberNode()  {}
func (*MethodDecl) memberNode() {}
func (*Opaque) memberNode()     {}

func (*Block) stmtNode()    {}
func (*LocalVar) stmtNode() {}
func (*ExprStmt) stmtNode() {}
func (*Return) stmtNode()   {}
func (*Opaque) stmtNode()   {}

func (*Ident) exprNode()       {}
func (*This) exprNode()        {}
func (*Literal) exprNode()     {}
func (*MethodCall) exprNode()  {}
func (*FieldAccess) exprNode() {}
func (*New) exprNode()         {}
func (*Cast) exprNode()        {}
func (*Paren) exprNode()       {}
func (*Lambda) exprNode()      {}
func (*Opaque) exprNode()      {}
