package recipe

import (
	"context"
	"strings"

	"github.com/NickyBoy89/propmigrate/tree"
)

// PlainTaskPropertyToProviderAPI retypes the getters of plain task inputs to
// return the wrapper. Unlike the full migration, it looks at each getter on its
// own, and leaves fields, setters and callers alone
type PlainTaskPropertyToProviderAPI struct{}

func (PlainTaskPropertyToProviderAPI) Name() string { return "plain-task-property" }

func (PlainTaskPropertyToProviderAPI) DisplayName() string {
	return "Use `Property<T>` instead of plain task property"
}

func (PlainTaskPropertyToProviderAPI) Description() string {
	return "Use `Property<T>` instead of plain task property."
}

func (p PlainTaskPropertyToProviderAPI) Run(ctx context.Context, run *Run) error {
	return run.eachUnit(ctx, p.Name(), func(_ context.Context, unit *tree.SourceUnit) (*tree.SourceUnit, error) {
		updated, err := tree.Transform(unit, &plainGetterRewriter{
			memberRewriter{run: run, unit: unit, recipe: p.Name()},
		})
		if err != nil {
			return nil, err
		}
		if updated == unit {
			return unit, nil
		}
		return addWrapperImport(updated, run.Config), nil
	})
}

type plainGetterRewriter struct {
	memberRewriter
}

func (g *plainGetterRewriter) VisitMember(c *tree.Cursor, member tree.Member) (tree.Member, error) {
	method, ok := member.(*tree.MethodDecl)
	if !ok || !strings.HasPrefix(method.Name, "get") || !IsGetterForPlainProperty(method, g.run.Config) {
		return member, nil
	}
	var typeName string
	if class := c.EnclosingClass(); class != nil && class.Class != nil {
		typeName = class.Class.FQN
	}
	return g.migrateGetter(typeName, method)
}
