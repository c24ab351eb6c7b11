package symbol

import (
	"fmt"

	"github.com/NickyBoy89/propmigrate/javatype"
)

// Definition represents the name and type of a single local symbol, such as a
// parameter or a local variable
type Definition struct {
	Name string
	// Type is nil when the declared type could not be resolved
	Type javatype.Type
}

func (d Definition) String() string {
	return fmt.Sprintf("Name: %s Type: %v", d.Name, d.Type)
}

// localScope is one level of nested local declarations inside of a method body
type localScope struct {
	parent      *localScope
	definitions []*Definition
}

func (s *localScope) push() *localScope {
	return &localScope{parent: s}
}

func (s *localScope) define(name string, typ javatype.Type) {
	s.definitions = append(s.definitions, &Definition{Name: name, Type: typ})
}

// FindVariable searches the scope, and every enclosing scope, for the most
// recent definition of the name
func (s *localScope) FindVariable(name string) *Definition {
	for scope := s; scope != nil; scope = scope.parent {
		for i := len(scope.definitions) - 1; i >= 0; i-- {
			if scope.definitions[i].Name == name {
				return scope.definitions[i]
			}
		}
	}
	return nil
}
