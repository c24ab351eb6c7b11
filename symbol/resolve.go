package symbol

import (
	"strings"

	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/tree"
	log "github.com/sirupsen/logrus"
)

// Packages that every file imports implicitly
var implicitImports = []string{"java.lang"}

// typeContext is everything in scope while resolving a type name
type typeContext struct {
	file  *FileScope
	class *ClassScope
	// Type parameters of the enclosing generic method
	methodTypeParams []string
}

// isTypeParam reports whether a name refers to a type parameter of the
// enclosing method, or of any enclosing class
func (tc typeContext) isTypeParam(name string) bool {
	for _, param := range tc.methodTypeParams {
		if param == name {
			return true
		}
	}
	for class := tc.class; class != nil; class = class.Outer {
		for _, param := range class.Decl.TypeParams {
			if param == name {
				return true
			}
		}
	}
	return false
}

// resolveType resolves a type expression, recording the result on the
// expression. It returns nil if the type is unknown
func (gs *GlobalSymbols) resolveType(expr *tree.TypeExpr, tc typeContext) javatype.Type {
	if expr == nil {
		return nil
	}
	resolved := gs.resolveTypeName(expr, tc)
	if resolved != nil {
		for i := 0; i < expr.Dims; i++ {
			resolved = &javatype.Array{Elem: resolved}
		}
	}
	expr.Resolved = resolved
	return resolved
}

func (gs *GlobalSymbols) resolveTypeName(expr *tree.TypeExpr, tc typeContext) javatype.Type {
	if primitive := javatype.PrimitiveFor(expr.Name); primitive != nil {
		return primitive
	}

	switch expr.Name {
	case "var", "def":
		// Inferred types are not tracked
		return nil
	case "?":
		if expr.Bound != nil && !expr.Super {
			return gs.resolveType(expr.Bound, tc)
		}
		gs.resolveType(expr.Bound, tc)
		return gs.Class(javatype.ObjectName)
	}

	if !strings.Contains(expr.Name, ".") && tc.isTypeParam(expr.Name) {
		return &javatype.TypeVar{Name: expr.Name}
	}

	class := gs.lookupClass(expr.Name, tc)
	if class == nil {
		fields := log.Fields{"type": expr.Name}
		if tc.file != nil {
			fields["file"] = tc.file.Path
		}
		log.WithFields(fields).Debug("Unresolved type")
		return nil
	}

	if len(expr.Args) == 0 {
		return class.Class
	}
	params := make([]javatype.Type, len(expr.Args))
	for i, arg := range expr.Args {
		params[i] = gs.resolveType(arg, tc)
		if params[i] == nil {
			params[i] = &javatype.Unknown{Name: arg.Name}
		}
	}
	return javatype.NewParameterized(class.Class, params...)
}

// lookupClass finds a class by the name it is referred to in some scope,
// which may be a simple name, a nested name such as `Map.Entry`, or a
// fully-qualified name
func (gs *GlobalSymbols) lookupClass(name string, tc typeContext) *ClassScope {
	segments := strings.Split(name, ".")

	// The first segment is either a class that is in scope, or part of a package
	if outer := gs.lookupSimpleName(segments[0], tc); outer != nil {
		if class := nestedPath(outer, segments[1:]); class != nil {
			return class
		}
	}

	// Try every split between the package and the class names
	for i := len(segments) - 1; i > 0; i-- {
		pkg := gs.Packages[strings.Join(segments[:i], ".")]
		if pkg == nil {
			continue
		}
		if top := pkg.FindClass(segments[i]); top != nil {
			if class := nestedPath(top, segments[i+1:]); class != nil {
				return class
			}
		}
	}
	return nil
}

func nestedPath(class *ClassScope, names []string) *ClassScope {
	for _, name := range names {
		if class = class.nested(name); class == nil {
			return nil
		}
	}
	return class
}

// lookupSimpleName resolves an unqualified class name, in the order that the
// language resolves them
func (gs *GlobalSymbols) lookupSimpleName(name string, tc typeContext) *ClassScope {
	// Classes nested in the current class, or any class that encloses it
	for class := tc.class; class != nil; class = class.Outer {
		if class.Decl.Name == name {
			return class
		}
		if nested := class.nested(name); nested != nil {
			return nested
		}
		if inherited := gs.inheritedNested(class.Class, name); inherited != nil {
			return inherited
		}
	}

	file := tc.file
	if file == nil {
		return nil
	}

	// Top-level classes of the same file
	for _, class := range file.Classes {
		if class.Decl.Name == name {
			return class
		}
	}

	// Single-type imports
	if fqn, ok := file.Imports[name]; ok {
		if class := gs.classes[fqn]; class != nil {
			return class
		}
		// The import may name a nested class, such as `java.util.Map.Entry`
		if class := gs.lookupClass(fqn, typeContext{}); class != nil {
			return class
		}
	}

	// Classes in the same package
	if pkg := gs.Packages[file.Package]; pkg != nil {
		if class := pkg.FindClass(name); class != nil {
			return class
		}
	}

	// Wildcard imports, then the packages that are always imported
	for _, wildcard := range append(append([]string{}, file.Wildcards...), implicitImports...) {
		if pkg := gs.Packages[wildcard]; pkg != nil {
			if class := pkg.FindClass(name); class != nil {
				return class
			}
		}
		// A wildcard may import the nested classes of a class
		if outer := gs.lookupClass(wildcard, typeContext{}); outer != nil {
			if nested := outer.nested(name); nested != nil {
				return nested
			}
		}
	}

	return nil
}

// inheritedNested finds a class nested in one of a class's supertypes
func (gs *GlobalSymbols) inheritedNested(class *javatype.Class, name string) *ClassScope {
	if class == nil {
		return nil
	}
	for _, super := range class.Supertypes {
		base := javatype.ClassOf(super)
		if base == nil || base.FQN == class.FQN {
			continue
		}
		if scope := gs.classes[base.FQN]; scope != nil {
			if nested := scope.nested(name); nested != nil {
				return nested
			}
		}
	}
	return nil
}
