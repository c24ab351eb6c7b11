package keywords

import "golang.org/x/exp/slices"

// List from https://docs.oracle.com/javase/specs/jls/se17/html/jls-8.html#jls-8.3.1
var (
	AccessModifiers    = []string{"private", "protected", "public"}
	NonAccessModifiers = []string{"final", "static", "abstract", "transient", "synchronized", "volatile", "native", "strictfp", "default", "sealed", "non-sealed"}
)

// IsModifier reports whether a keyword is a declaration modifier
func IsModifier(keyword string) bool {
	return slices.Contains(AccessModifiers, keyword) || slices.Contains(NonAccessModifiers, keyword)
}
