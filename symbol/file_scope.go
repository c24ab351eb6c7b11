package symbol

import "github.com/NickyBoy89/propmigrate/tree"

// FileScope represents the scope in a single source file, that can contain one
// or more source classes
type FileScope struct {
	Path string
	// The global package that the file is located in
	Package string
	// Every type that is imported into the file
	// Formatted as map[ImportedType: full.package.path.ImportedType]
	Imports map[string]string
	// Packages imported with a wildcard
	Wildcards []string
	// The top-level classes that are in the file
	Classes []*ClassScope
	Unit    *tree.SourceUnit
}

// FindClass searches through a file to find if a given class has been defined
// at its top level, or within any of the nested classes
func (fs *FileScope) FindClass(name string) *ClassScope {
	for _, class := range fs.Classes {
		if found := class.FindClass(name); found != nil {
			return found
		}
	}
	return nil
}
