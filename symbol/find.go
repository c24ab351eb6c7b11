package symbol

// Finder represents an object that can search through its contents for a given
// list of declarations that match a certain criteria
type Finder[T any] interface {
	By(criteria func(d T) bool) []T
	ByName(name string) []T
}
