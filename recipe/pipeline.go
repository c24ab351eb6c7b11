package recipe

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// MigrateToProviderAPI is the whole migration: discovery, then the
// declarations, then the call sites. Every step sees the units as the
// previous step left them
type MigrateToProviderAPI struct{}

func (MigrateToProviderAPI) Name() string { return "migrate-to-provider-api" }

func (MigrateToProviderAPI) DisplayName() string { return "Migrate Gradle task to the Provider API" }

func (MigrateToProviderAPI) Description() string {
	return "Migrate the plain properties of Gradle tasks to `Property<T>`, along with every call to their setters."
}

// Steps returns the recipes that the migration runs, in order
func (MigrateToProviderAPI) Steps() []Recipe {
	return []Recipe{
		CollectPlainProperties{},
		MigrateDeclarations{},
		MigrateSetInvocations{},
	}
}

func (m MigrateToProviderAPI) Run(ctx context.Context, run *Run) error {
	for _, step := range m.Steps() {
		log.WithField("recipe", step.Name()).Debug("Running step")
		if err := step.Run(ctx, run); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}

// All lists every recipe that can run on its own, in the order that they are
// listed to users. The rewriting steps of the migration need the candidates
// that discovery records, so they only run as part of it
func All() []Recipe {
	return []Recipe{
		MigrateToProviderAPI{},
		CollectPlainProperties{},
		PlainTaskPropertyToProviderAPI{},
	}
}

// ByName finds a recipe by its name
func ByName(name string) (Recipe, bool) {
	for _, r := range All() {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}
