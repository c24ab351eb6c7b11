package symbol

import (
	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/tree"
)

// ClassScope represents a single defined class, and the declarations in it
type ClassScope struct {
	// The resolved type of the class
	Class *javatype.Class
	Decl  *tree.ClassDecl
	File  *FileScope
	// The class that this one is nested in, if any
	Outer *ClassScope
	// Every class that is nested within the base class
	Subclasses []*ClassScope
}

// FindMethod searches through the class's methods, including the inherited
// ones, to find a specific method
func (cs *ClassScope) FindMethod() Finder[*javatype.Method] {
	return methodFinder{class: cs.Class}
}

// FindField searches through the class's fields, including the inherited
// ones, to find a specific field
func (cs *ClassScope) FindField() Finder[*javatype.Field] {
	return fieldFinder{class: cs.Class}
}

type methodFinder struct {
	class *javatype.Class
}

func (mf methodFinder) By(criteria func(m *javatype.Method) bool) []*javatype.Method {
	results := []*javatype.Method{}
	for _, method := range mf.class.AllMethods() {
		if criteria(method) {
			results = append(results, method)
		}
	}
	return results
}

func (mf methodFinder) ByName(name string) []*javatype.Method {
	return mf.By(func(m *javatype.Method) bool {
		return m.Name == name
	})
}

type fieldFinder struct {
	class *javatype.Class
}

func (ff fieldFinder) By(criteria func(f *javatype.Field) bool) []*javatype.Field {
	results := []*javatype.Field{}
	seen := make(map[*javatype.Class]bool)
	var walk func(class *javatype.Class)
	walk = func(class *javatype.Class) {
		if seen[class] {
			return
		}
		seen[class] = true
		for _, field := range class.Fields {
			if criteria(field) {
				results = append(results, field)
			}
		}
		for _, super := range class.Supertypes {
			if base := javatype.ClassOf(super); base != nil {
				walk(base)
			}
		}
	}
	walk(ff.class)
	return results
}

func (ff fieldFinder) ByName(name string) []*javatype.Field {
	return ff.By(func(f *javatype.Field) bool {
		return f.Name == name
	})
}

// FindClass searches the class and its nested classes for a class with the
// given simple name
func (cs *ClassScope) FindClass(name string) *ClassScope {
	if cs.Decl.Name == name {
		return cs
	}
	for _, subclass := range cs.Subclasses {
		if class := subclass.FindClass(name); class != nil {
			return class
		}
	}
	return nil
}

// nested returns a directly nested class by its simple name
func (cs *ClassScope) nested(name string) *ClassScope {
	for _, subclass := range cs.Subclasses {
		if subclass.Decl.Name == name {
			return subclass
		}
	}
	return nil
}
