package recipe

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/NickyBoy89/propmigrate/config"
	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/tree"
)

// accessorPrefix returns the `get` or `is` prefix of a getter's name, if the
// name has one and something follows it
func accessorPrefix(name string) (string, bool) {
	for _, prefix := range []string{"get", "is"} {
		if len(name) > len(prefix) && strings.HasPrefix(name, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// IsGetterForPlainProperty reports whether a method is the getter of a task
// input that has not been migrated yet: it is named like a getter, is
// annotated as an input, and returns a resolved type other than the wrapper
func IsGetterForPlainProperty(method *tree.MethodDecl, cfg config.Config) bool {
	if _, ok := accessorPrefix(method.Name); !ok {
		return false
	}
	if !method.HasAnnotation(cfg.InputAnnotation) {
		return false
	}
	if method.ReturnType == nil || method.ReturnType.Resolved == nil {
		return false
	}
	returned := method.ReturnType.Resolved
	if returned == javatype.Type(javatype.Void) {
		return false
	}
	return !returned.Extends(cfg.WrapperType)
}

// isSetterDecl reports whether a method is named and shaped like a setter
func isSetterDecl(method *tree.MethodDecl) bool {
	return len(method.Name) > len("set") && strings.HasPrefix(method.Name, "set") && len(method.Params) == 1
}

// isSetterCall reports whether a call is named and shaped like a call to a
// setter on some receiver
func isSetterCall(call *tree.MethodCall) bool {
	return len(call.Name) > len("set") && strings.HasPrefix(call.Name, "set") &&
		len(call.Args) == 1 && call.Recv != nil
}

// GetterToField derives a property's name from its getter's name, so that
// `getLabel` and `isEnabled` become `label` and `enabled`
func GetterToField(name string) string {
	if prefix, ok := accessorPrefix(name); ok {
		return decapitalize(name[len(prefix):])
	}
	return name
}

// SetterToField derives a property's name from its setter's name
func SetterToField(name string) string {
	return decapitalize(strings.TrimPrefix(name, "set"))
}

// SetterToGetter names the getter that goes along with a setter
func SetterToGetter(name string) string {
	if strings.HasPrefix(name, "set") {
		return "get" + name[len("set"):]
	}
	return name
}

func decapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// Box returns the fully-qualified name of the class that boxes a primitive
func Box(p *javatype.Primitive) (string, error) {
	name, ok := javatype.BoxedName(p)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPrimitive, p.Keyword)
	}
	return name, nil
}
