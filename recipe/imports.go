package recipe

import (
	"github.com/NickyBoy89/propmigrate/config"
	"github.com/NickyBoy89/propmigrate/tree"
)

// addWrapperImport imports the wrapper type into a unit, unless the unit can
// already refer to it by its simple name. The new import is placed among the
// other single-type imports so that they stay sorted
func addWrapperImport(unit *tree.SourceUnit, cfg config.Config) *tree.SourceUnit {
	pkg := cfg.WrapperPackage()
	if unit.PackageName() == pkg {
		return unit
	}

	at, lastPlain := -1, -1
	for i, imp := range unit.Imports {
		if imp.Static {
			continue
		}
		if (imp.Wildcard && imp.Path == pkg) || (!imp.Wildcard && imp.Path == cfg.WrapperType) {
			return unit
		}
		lastPlain = i
		if at < 0 && importText(imp) > cfg.WrapperType {
			at = i
		}
	}
	if at < 0 {
		at = lastPlain + 1
	}

	imports := make([]*tree.Import, 0, len(unit.Imports)+1)
	imports = append(imports, unit.Imports[:at]...)
	imports = append(imports, tree.NewImport(cfg.WrapperType))
	imports = append(imports, unit.Imports[at:]...)
	return unit.WithImports(imports)
}

// importText is an import's name as written, which is what they are sorted by
func importText(imp *tree.Import) string {
	if imp.Wildcard {
		return imp.Path + ".*"
	}
	return imp.Path
}
