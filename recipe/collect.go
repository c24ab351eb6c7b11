package recipe

import (
	"bytes"
	"context"
	"fmt"

	"github.com/NickyBoy89/propmigrate/tree"
	log "github.com/sirupsen/logrus"
)

// CollectPlainProperties finds the plain properties of every class: the ones
// whose getter is an input, and is not already typed as the wrapper. It only
// records them, and leaves every unit unchanged
type CollectPlainProperties struct{}

func (CollectPlainProperties) Name() string { return "collect-plain-properties" }

func (CollectPlainProperties) DisplayName() string { return "Collect task plain properties" }

func (CollectPlainProperties) Description() string {
	return "Find the getters of task inputs that are not typed as `Property<T>` yet, and remember their properties for the following recipes."
}

func (p CollectPlainProperties) Run(ctx context.Context, run *Run) error {
	recorder := run.Recorder()
	return run.eachUnit(ctx, p.Name(), func(_ context.Context, unit *tree.SourceUnit) (*tree.SourceUnit, error) {
		recorder.SetDialect(unit.Path, unit.Dialect)
		if len(unit.Unparsed) > 0 {
			first := unit.Unparsed[0]
			run.Report(Diagnostic{
				Severity: Warning,
				Recipe:   p.Name(),
				Path:     unit.Path,
				Message: fmt.Sprintf("%d region(s) could not be parsed, starting at line %d, and nothing inside of them is migrated",
					len(unit.Unparsed), bytes.Count(unit.Source[:first.Start], []byte{'\n'})+1),
			})
		}

		tree.Inspect(unit, func(c *tree.Cursor) bool {
			// Anonymous classes have no name to record their properties under
			if _, ok := c.Node().(*tree.New); ok {
				return false
			}
			method, ok := c.Node().(*tree.MethodDecl)
			if !ok || !IsGetterForPlainProperty(method, run.Config) {
				return true
			}
			class := c.EnclosingClass()
			if class == nil || class.Class == nil {
				return true
			}

			property := GetterToField(method.Name)
			if recorder.Record(class.Class.FQN, property) {
				log.WithFields(log.Fields{
					"type":     class.Class.FQN,
					"property": property,
					"path":     unit.Path,
				}).Debug("Found plain property")
			}
			return true
		})
		return unit, nil
	})
}
