package symbol

// PackageScope represents a single package, which can contain one or more files
type PackageScope struct {
	Name string
	// Maps the file's path to its definitions
	Files map[string]*FileScope
	// Every top-level class in the package, by its simple name
	Classes map[string]*ClassScope
}

// FindClass searches for a top-level class in the package by its simple name
func (ps *PackageScope) FindClass(name string) *ClassScope {
	return ps.Classes[name]
}

// AddSymbolsFromFile registers a file, and all of its top-level classes, with the package
func (ps *PackageScope) AddSymbolsFromFile(symbols *FileScope) {
	ps.Files[symbols.Path] = symbols
	for _, class := range symbols.Classes {
		ps.Classes[class.Decl.Name] = class
	}
}
