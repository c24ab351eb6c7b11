package symbol

import "github.com/NickyBoy89/propmigrate/javatype"

// bindings maps the names of a class's type parameters to their arguments
type bindings map[string]javatype.Type

// bindingsOf returns the type arguments of a parameterized type
func bindingsOf(t javatype.Type) bindings {
	p, ok := t.(*javatype.Parameterized)
	if !ok {
		return nil
	}
	b := make(bindings, len(p.Base.TypeParams))
	for i, name := range p.Base.TypeParams {
		if i < len(p.Params) && p.Params[i] != nil {
			b[name] = p.Params[i]
		}
	}
	return b
}

// substitute replaces every type variable bound in b
func substitute(t javatype.Type, b bindings) javatype.Type {
	if len(b) == 0 || t == nil {
		return t
	}
	switch t := t.(type) {
	case *javatype.TypeVar:
		if bound, ok := b[t.Name]; ok {
			return bound
		}
	case *javatype.Parameterized:
		params := make([]javatype.Type, len(t.Params))
		for i, param := range t.Params {
			params[i] = substitute(param, b)
		}
		return javatype.NewParameterized(t.Base, params...)
	case *javatype.Array:
		return &javatype.Array{Elem: substitute(t.Elem, b)}
	}
	return t
}

// bindingsFor works out the type arguments of declaring, as seen from a value
// of type recv, by following recv's supertypes down to declaring
func bindingsFor(recv javatype.Type, declaring *javatype.Class) bindings {
	return findBindings(recv, declaring, make(map[*javatype.Class]bool))
}

func findBindings(current javatype.Type, declaring *javatype.Class, seen map[*javatype.Class]bool) bindings {
	class := javatype.ClassOf(current)
	if class == nil || seen[class] {
		return nil
	}
	seen[class] = true

	own := bindingsOf(current)
	if class == declaring {
		return own
	}
	for _, super := range class.Supertypes {
		if found := findBindings(substitute(super, own), declaring, seen); found != nil {
			return found
		}
	}
	return nil
}

// MemberOf returns a method's signature as seen from a value of type recv
func MemberOf(recv javatype.Type, method *javatype.Method) *javatype.Method {
	b := bindingsFor(recv, method.Declaring)
	if len(b) == 0 {
		return method
	}
	params := make([]javatype.Type, len(method.Params))
	for i, param := range method.Params {
		params[i] = substitute(param, b)
	}
	return method.WithParams(params).WithReturn(substitute(method.Return, b))
}
