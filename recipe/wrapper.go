package recipe

import (
	"fmt"
	"strings"

	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/tree"
)

// boxed returns the class that boxes a primitive
func (r *Run) boxed(p *javatype.Primitive) (*javatype.Class, error) {
	name, err := Box(p)
	if err != nil {
		return nil, err
	}
	class := r.Symbols.Class(name)
	if class == nil {
		return nil, fmt.Errorf("boxed type %s is not on the classpath", name)
	}
	return class, nil
}

// wrap returns the wrapper type around an element type, boxing primitives
func (r *Run) wrap(elem javatype.Type) (*javatype.Parameterized, error) {
	if p, ok := elem.(*javatype.Primitive); ok {
		boxed, err := r.boxed(p)
		if err != nil {
			return nil, err
		}
		elem = boxed
	}
	return javatype.NewParameterized(r.Wrapper, elem), nil
}

// wrapTypeExpr builds the type expression for the wrapper around a declared
// type, such as `Property<String>` for `String`. A primitive is replaced with
// its box, and any other type is kept as written. It returns nil if the
// declared type was never resolved
func (r *Run) wrapTypeExpr(declared *tree.TypeExpr) (*tree.TypeExpr, error) {
	if declared.Resolved == nil {
		return nil, nil
	}
	wrapped, err := r.wrap(declared.Resolved)
	if err != nil {
		return nil, err
	}

	elem := declared
	if _, primitive := declared.Resolved.(*javatype.Primitive); primitive {
		boxed := wrapped.Params[0].(*javatype.Class)
		// Boxes live in java.lang, so their simple names never need an import
		elem = tree.NewTypeExpr(boxed.SimpleName(), boxed)
	}
	return tree.NewTypeExpr(r.Config.WrapperSimpleName(), wrapped, elem), nil
}

// isWrapper reports whether a type already is the wrapper type
func (r *Run) isWrapper(t javatype.Type) bool {
	return t != nil && t.Extends(r.Config.WrapperType)
}

// qualify prefixes a property with its type, for messages
func qualify(typeName, property string) string {
	return strings.Join([]string{typeName, property}, ".")
}
