// Package javatype models resolved Java types: the handles that the symbol
// table attaches to declarations and expressions.
package javatype

import (
	"strings"

	"golang.org/x/exp/slices"
)

// ObjectName is the root of every reference type
const ObjectName = "java.lang.Object"

// Type is a resolved type
type Type interface {
	// FullyQualifiedName returns the erased, fully-qualified name of the type,
	// or the keyword for primitives
	FullyQualifiedName() string
	// Extends reports whether the type is the named type, or inherits from it
	Extends(fqn string) bool
	// IsAssignableFrom reports whether a value of the other type may be stored
	// in a variable of this type, without boxing conversions
	IsAssignableFrom(other Type) bool
	String() string
}

// Primitive is one of Java's primitive types, or `void`
type Primitive struct {
	Keyword string
}

var (
	Boolean = &Primitive{Keyword: "boolean"}
	Byte    = &Primitive{Keyword: "byte"}
	Char    = &Primitive{Keyword: "char"}
	Double  = &Primitive{Keyword: "double"}
	Float   = &Primitive{Keyword: "float"}
	Int     = &Primitive{Keyword: "int"}
	Long    = &Primitive{Keyword: "long"}
	Short   = &Primitive{Keyword: "short"}
	Void    = &Primitive{Keyword: "void"}
)

var primitives = map[string]*Primitive{
	"boolean": Boolean,
	"byte":    Byte,
	"char":    Char,
	"double":  Double,
	"float":   Float,
	"int":     Int,
	"long":    Long,
	"short":   Short,
	"void":    Void,
}

// PrimitiveFor returns the primitive type for a keyword, or nil if the keyword
// does not name a primitive
func PrimitiveFor(keyword string) *Primitive {
	return primitives[keyword]
}

func (p *Primitive) FullyQualifiedName() string { return p.Keyword }
func (p *Primitive) Extends(fqn string) bool    { return p.Keyword == fqn }
func (p *Primitive) String() string             { return p.Keyword }

func (p *Primitive) IsAssignableFrom(other Type) bool {
	o, ok := other.(*Primitive)
	return ok && o.Keyword == p.Keyword
}

// Kind is the flavor of a class-like declaration
type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindEnum
	KindAnnotation
	KindRecord
)

// Class is a class, interface, enum, annotation or record
type Class struct {
	FQN        string
	Kind       Kind
	TypeParams []string
	// Supertypes holds the superclass followed by any interfaces, each either a
	// *Class or a *Parameterized
	Supertypes []Type
	Fields     []*Field
	Methods    []*Method
}

// NewClass creates an empty class with the given name
func NewClass(fqn string) *Class {
	return &Class{FQN: fqn}
}

func (c *Class) FullyQualifiedName() string { return c.FQN }
func (c *Class) String() string             { return c.FQN }

// SimpleName returns the last segment of the class's name
func (c *Class) SimpleName() string {
	name := c.FQN
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// PackageName returns everything before the class's simple name, ignoring any
// enclosing classes
func (c *Class) PackageName() string {
	name := c.FQN
	if i := strings.IndexByte(name, '$'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

func (c *Class) Extends(fqn string) bool {
	return c.extends(fqn, map[*Class]bool{})
}

func (c *Class) extends(fqn string, seen map[*Class]bool) bool {
	if c.FQN == fqn {
		return true
	}
	if seen[c] {
		return false
	}
	seen[c] = true
	for _, super := range c.Supertypes {
		if base := ClassOf(super); base != nil && base.extends(fqn, seen) {
			return true
		}
	}
	return false
}

func (c *Class) IsAssignableFrom(other Type) bool {
	if other == nil {
		return false
	}
	if _, primitive := other.(*Primitive); primitive {
		return false
	}
	if c.FQN == ObjectName {
		return true
	}
	return other.Extends(c.FQN)
}

// Members returns the methods declared directly on the class, in declaration order
func (c *Class) Members() []*Method {
	return c.Methods
}

// AllMethods returns the class's own methods followed by every inherited
// method, walking the supertypes depth-first in declaration order
func (c *Class) AllMethods() []*Method {
	var methods []*Method
	c.walk(map[*Class]bool{}, func(class *Class) {
		methods = append(methods, class.Methods...)
	})
	return methods
}

// FindField searches the class and its supertypes for a field
func (c *Class) FindField(name string) *Field {
	var found *Field
	c.walk(map[*Class]bool{}, func(class *Class) {
		if found != nil {
			return
		}
		for _, field := range class.Fields {
			if field.Name == name {
				found = field
				return
			}
		}
	})
	return found
}

func (c *Class) walk(seen map[*Class]bool, visit func(*Class)) {
	if seen[c] {
		return
	}
	seen[c] = true
	visit(c)
	for _, super := range c.Supertypes {
		if base := ClassOf(super); base != nil {
			base.walk(seen, visit)
		}
	}
}

// Parameterized is a generic class applied to type arguments, such as `Property<String>`
type Parameterized struct {
	Base   *Class
	Params []Type
}

// NewParameterized applies type arguments to a generic class
func NewParameterized(base *Class, params ...Type) *Parameterized {
	return &Parameterized{Base: base, Params: params}
}

func (p *Parameterized) FullyQualifiedName() string       { return p.Base.FQN }
func (p *Parameterized) Extends(fqn string) bool          { return p.Base.Extends(fqn) }
func (p *Parameterized) IsAssignableFrom(other Type) bool { return p.Base.IsAssignableFrom(other) }

func (p *Parameterized) String() string {
	var sb strings.Builder
	sb.WriteString(p.Base.FQN)
	sb.WriteByte('<')
	for i, param := range p.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if param != nil {
			sb.WriteString(param.String())
		}
	}
	sb.WriteByte('>')
	return sb.String()
}

// TypeVar is a reference to a generic type parameter
type TypeVar struct {
	Name string
}

func (t *TypeVar) FullyQualifiedName() string { return t.Name }
func (t *TypeVar) Extends(fqn string) bool    { return fqn == ObjectName }
func (t *TypeVar) String() string             { return t.Name }

func (t *TypeVar) IsAssignableFrom(other Type) bool {
	_, primitive := other.(*Primitive)
	return other != nil && !primitive
}

// Array is an array of some element type
type Array struct {
	Elem Type
}

func (a *Array) FullyQualifiedName() string { return a.Elem.FullyQualifiedName() + "[]" }
func (a *Array) String() string             { return a.Elem.String() + "[]" }

func (a *Array) Extends(fqn string) bool {
	return fqn == ObjectName || fqn == a.FullyQualifiedName()
}

func (a *Array) IsAssignableFrom(other Type) bool {
	o, ok := other.(*Array)
	return ok && a.Elem.IsAssignableFrom(o.Elem)
}

// Unknown stands in for a type argument that could not be resolved, so that
// the rest of the enclosing type remains usable
type Unknown struct {
	Name string
}

func (u *Unknown) FullyQualifiedName() string      { return u.Name }
func (u *Unknown) Extends(string) bool             { return false }
func (u *Unknown) IsAssignableFrom(other Type) bool { return false }
func (u *Unknown) String() string                  { return u.Name }

// ClassOf returns the class behind a class or parameterized type, or nil for
// anything else
func ClassOf(t Type) *Class {
	switch t := t.(type) {
	case *Class:
		return t
	case *Parameterized:
		return t.Base
	}
	return nil
}

// Field is a field declared on a class
type Field struct {
	Name      string
	Type      Type
	Declaring *Class
}

// Method is the signature of a method or constructor
type Method struct {
	Name      string
	Declaring *Class
	Params    []Type
	// Return is nil for constructors
	Return Type
	// Annotations holds the fully-qualified names of the method's annotations
	Annotations []string
}

// WithReturn returns a copy of the signature with a different return type
func (m *Method) WithReturn(t Type) *Method {
	clone := *m
	clone.Return = t
	return &clone
}

// WithParams returns a copy of the signature with different parameter types
func (m *Method) WithParams(params []Type) *Method {
	clone := *m
	clone.Params = params
	return &clone
}

// HasAnnotation reports whether the method carries the named annotation
func (m *Method) HasAnnotation(fqn string) bool {
	return slices.Contains(m.Annotations, fqn)
}

func (m *Method) String() string {
	var sb strings.Builder
	if m.Declaring != nil {
		sb.WriteString(m.Declaring.FQN)
		sb.WriteByte('#')
	}
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for i, param := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if param == nil {
			sb.WriteByte('?')
		} else {
			sb.WriteString(param.String())
		}
	}
	sb.WriteByte(')')
	if m.Return != nil {
		sb.WriteByte(' ')
		sb.WriteString(m.Return.String())
	}
	return sb.String()
}

// boxes maps every primitive to the class that boxes it
var boxes = map[string]string{
	"boolean": "java.lang.Boolean",
	"byte":    "java.lang.Byte",
	"char":    "java.lang.Character",
	"double":  "java.lang.Double",
	"float":   "java.lang.Float",
	"int":     "java.lang.Integer",
	"long":    "java.lang.Long",
	"short":   "java.lang.Short",
}

// BoxedName returns the fully-qualified name of the class that boxes a
// primitive. There is no box for `void`
func BoxedName(p *Primitive) (string, bool) {
	name, ok := boxes[p.Keyword]
	return name, ok
}
