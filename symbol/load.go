package symbol

import (
	"context"
	"strings"

	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/tree"
	log "github.com/sirupsen/logrus"
)

// Load builds the symbol table for a set of units, compiled against the
// embedded classpath, and attributes the units: every type expression,
// declaration and expression in them is annotated with what it resolves to.
//
// Attribution annotates the units in place, so Load must run before any of
// the units are rewritten. Anything that cannot be resolved is left nil
func Load(ctx context.Context, units []*tree.SourceUnit) (*GlobalSymbols, error) {
	stubs, err := classpath(ctx)
	if err != nil {
		return nil, err
	}

	gs := newGlobalSymbols()

	// Classes are declared first, so that every later step can refer to any
	// class, no matter which file it is in
	files := make([]*FileScope, 0, len(stubs)+len(units))
	for _, unit := range stubs {
		files = append(files, gs.declareFile(unit))
	}
	for _, unit := range units {
		files = append(files, gs.declareFile(unit))
	}

	for _, file := range files {
		for _, class := range file.Classes {
			gs.resolveHeader(class)
		}
	}
	for _, file := range files {
		for _, class := range file.Classes {
			gs.resolveMembers(class)
		}
	}

	for _, file := range files[len(stubs):] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gs.attributeFile(file)
	}

	return gs, nil
}

// declareFile generates the scopes for a single file, and declares its classes
func (gs *GlobalSymbols) declareFile(unit *tree.SourceUnit) *FileScope {
	file := &FileScope{
		Path:    unit.Path,
		Package: unit.PackageName(),
		Imports: make(map[string]string),
		Unit:    unit,
	}

	for _, imp := range unit.Imports {
		switch {
		case imp.Static:
			// Static imports bring in members, not types
		case imp.Wildcard:
			file.Wildcards = append(file.Wildcards, imp.Path)
		default:
			file.Imports[imp.Path[strings.LastIndexByte(imp.Path, '.')+1:]] = imp.Path
		}
	}

	for _, decl := range unit.Types {
		file.Classes = append(file.Classes, gs.declareClass(decl, file, nil))
	}

	gs.packageScope(file.Package).AddSymbolsFromFile(file)
	return file
}

func (gs *GlobalSymbols) declareClass(decl *tree.ClassDecl, file *FileScope, outer *ClassScope) *ClassScope {
	var fqn string
	switch {
	case outer != nil:
		fqn = outer.Class.FQN + "$" + decl.Name
	case file.Package != "":
		fqn = file.Package + "." + decl.Name
	default:
		fqn = decl.Name
	}

	class := &javatype.Class{
		FQN:        fqn,
		Kind:       decl.Kind,
		TypeParams: decl.TypeParams,
	}
	decl.Class = class

	scope := &ClassScope{
		Class: class,
		Decl:  decl,
		File:  file,
		Outer: outer,
	}
	if existing, ok := gs.classes[fqn]; ok && !strings.HasPrefix(existing.File.Path, classpathPrefix) {
		log.WithFields(log.Fields{
			"class": fqn,
			"file":  file.Path,
			"first": existing.File.Path,
		}).Warn("Class is declared more than once")
	}
	gs.classes[fqn] = scope

	for _, member := range decl.Members {
		if nested, ok := member.(*tree.ClassDecl); ok {
			scope.Subclasses = append(scope.Subclasses, gs.declareClass(nested, file, scope))
		}
	}
	return scope
}

// resolveHeader resolves the supertypes of a class, and of its nested classes
func (gs *GlobalSymbols) resolveHeader(scope *ClassScope) {
	tc := typeContext{file: scope.File, class: scope}
	decl, class := scope.Decl, scope.Class

	hasSuperclass := false
	if decl.Extends != nil {
		if super := gs.resolveType(decl.Extends, tc); super != nil {
			class.Supertypes = append(class.Supertypes, super)
			hasSuperclass = true
		}
	}
	for _, iface := range decl.Implements {
		if super := gs.resolveType(iface, tc); super != nil {
			class.Supertypes = append(class.Supertypes, super)
		}
	}

	// Everything but Object itself inherits from Object, including interfaces,
	// which have all of Object's public methods
	if object := gs.Class(javatype.ObjectName); object != nil && class.FQN != javatype.ObjectName && !hasSuperclass {
		if decl.Kind == javatype.KindInterface || decl.Kind == javatype.KindAnnotation {
			class.Supertypes = append(class.Supertypes, object)
		} else {
			class.Supertypes = append([]javatype.Type{object}, class.Supertypes...)
		}
	}

	for _, subclass := range scope.Subclasses {
		gs.resolveHeader(subclass)
	}
}

// resolveMembers resolves the signatures of the fields and methods of a
// class, and of its nested classes
func (gs *GlobalSymbols) resolveMembers(scope *ClassScope) {
	tc := typeContext{file: scope.File, class: scope}
	class := scope.Class

	for _, member := range scope.Decl.Members {
		switch member := member.(type) {
		case *tree.FieldDecl:
			gs.resolveAnnotations(member.Annotations, tc)
			declared := gs.resolveType(member.Type, tc)
			for _, variable := range member.Variables {
				field := &javatype.Field{
					Name:      variable.Name,
					Type:      arrayOf(declared, variable.Dims),
					Declaring: class,
				}
				variable.Field = field
				class.Fields = append(class.Fields, field)
			}
		case *tree.MethodDecl:
			methodContext := tc
			methodContext.methodTypeParams = member.TypeParams

			method := &javatype.Method{
				Name:        member.Name,
				Declaring:   class,
				Annotations: gs.resolveAnnotations(member.Annotations, tc),
			}
			if member.ReturnType != nil {
				method.Return = gs.resolveType(member.ReturnType, methodContext)
			}
			for _, param := range member.Params {
				method.Params = append(method.Params, gs.paramType(param, methodContext))
			}
			member.Method = method
			class.Methods = append(class.Methods, method)
		}
	}

	for _, subclass := range scope.Subclasses {
		gs.resolveMembers(subclass)
	}
}

// resolveAnnotations resolves the classes of a list of annotations, and
// returns the fully-qualified names of the ones that could be resolved
func (gs *GlobalSymbols) resolveAnnotations(annotations []*tree.Annotation, tc typeContext) []string {
	var names []string
	for _, annotation := range annotations {
		if class := gs.lookupClass(annotation.Name, tc); class != nil {
			annotation.Type = class.Class
			names = append(names, class.Class.FQN)
		}
	}
	return names
}

func (gs *GlobalSymbols) paramType(param *tree.Param, tc typeContext) javatype.Type {
	if param.Type == nil {
		return nil
	}
	t := gs.resolveType(param.Type, tc)
	if param.Varargs && t != nil {
		t = &javatype.Array{Elem: t}
	}
	return t
}

func arrayOf(t javatype.Type, dims int) javatype.Type {
	if t == nil {
		return nil
	}
	for i := 0; i < dims; i++ {
		t = &javatype.Array{Elem: t}
	}
	return t
}
