package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/NickyBoy89/propmigrate/config"
	"github.com/NickyBoy89/propmigrate/parsing"
	"github.com/NickyBoy89/propmigrate/symbol"
	"github.com/NickyBoy89/propmigrate/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groovyTestTask = `import org.gradle.api.tasks.Input

class TestTask {
    private String property

    @Input
    String getProperty() {
        return property
    }

    void setProperty(String value) {
        this.property = value
    }
}
`

const migratedGroovyTestTask = `import org.gradle.api.provider.Property
import org.gradle.api.tasks.Input

class TestTask {
    private final Property<String> property

    @Input
    Property<String> getProperty() {
        return property
    }
}
`

func TestMigrateGroovyDeclarations(t *testing.T) {
	out, result := migrate(t, program{"TestTask.groovy": groovyTestTask})

	assert.Equal(t, program{"TestTask.groovy": migratedGroovyTestTask}, out)
	assert.Empty(t, result.Diagnostics)
}

func TestMigrateGroovySetInvocations(t *testing.T) {
	for _, test := range []struct {
		name   string
		before string
		after  string
	}{
		{
			name: "local variable",
			before: `class TestPlugin {
    void apply() {
        TestTask task = new TestTask()
        task.setProperty("Demo value")
    }
}
`,
			after: `class TestPlugin {
    void apply() {
        TestTask task = new TestTask()
        task.property.set("Demo value")
    }
}
`,
		},
		{
			name: "typed closure parameter",
			before: `import org.gradle.api.Action

class TestPlugin {

    def <T> T register(String name, Class<T> type, Action<? super T> configurationAction) {
        return null
    }

    void apply() {
        register("testTask", TestTask) { TestTask it ->
            it.setProperty("Demo value")
        }
    }
}
`,
			after: `import org.gradle.api.Action

class TestPlugin {

    def <T> T register(String name, Class<T> type, Action<? super T> configurationAction) {
        return null
    }

    void apply() {
        register("testTask", TestTask) { TestTask it ->
            it.property.set("Demo value")
        }
    }
}
`,
		},
		{
			name: "closure delegate",
			before: `class TestPlugin {

    def <T extends TestTask> T register(String name, Class<T> type, @DelegatesTo(value = TestTask.class, strategy = Closure.DELEGATE_FIRST) Closure configurationAction) {
        return null
    }

    void apply() {
        register("testTask", TestTask) {
            it.setProperty("Demo value")
        }
    }
}
`,
			after: `class TestPlugin {

    def <T extends TestTask> T register(String name, Class<T> type, @DelegatesTo(value = TestTask.class, strategy = Closure.DELEGATE_FIRST) Closure configurationAction) {
        return null
    }

    void apply() {
        register("testTask", TestTask) {
            it.property.set("Demo value")
        }
    }
}
`,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			out, result := migrate(t, program{
				"TestTask.groovy":   groovyTestTask,
				"TestPlugin.groovy": test.before,
			})

			assert.Equal(t, migratedGroovyTestTask, out["TestTask.groovy"])
			assert.Equal(t, test.after, out["TestPlugin.groovy"])
			assert.Empty(t, result.Diagnostics)
		})
	}
}

func TestMigrateGroovyIsIdempotent(t *testing.T) {
	out, _ := migrate(t, program{
		"TestTask.groovy": migratedGroovyTestTask,
		"TestPlugin.groovy": `class TestPlugin {
    void apply(TestTask task) {
        task.property.set("Demo value")
    }
}
`,
	})
	assert.Empty(t, out)
}

func TestCollectWarnsAboutUnparsedRegions(t *testing.T) {
	files := program{
		"TestTask.groovy": groovyTestTask,
		"Defaults.groovy": `class Defaults {
    void apply(TestTask task) {
        def labels = [first: "a", second: "b"]
        task.setProperty(labels.first)
    }
}
`,
	}

	var units []*tree.SourceUnit
	for _, path := range []string{"Defaults.groovy", "TestTask.groovy"} {
		unit, err := parsing.Parse(context.Background(), path, []byte(files[path]))
		if path == "TestTask.groovy" {
			require.NoError(t, err)
		} else {
			var syntaxErr *parsing.SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			require.NotEmpty(t, unit.Unparsed)
		}
		units = append(units, unit)
	}
	gs, err := symbol.Load(context.Background(), units)
	require.NoError(t, err)

	result, err := Execute(context.Background(), MigrateToProviderAPI{}, units, Options{Config: config.Default(), Symbols: gs, Workers: 2})
	require.NoError(t, err)

	var warnings []Diagnostic
	for _, d := range result.Diagnostics {
		if d.Path == "Defaults.groovy" {
			warnings = append(warnings, d)
		}
	}
	require.Len(t, warnings, 1)
	assert.Equal(t, Warning, warnings[0].Severity)
	assert.Equal(t, "collect-plain-properties", warnings[0].Recipe)
	assert.Contains(t, warnings[0].Message, "could not be parsed")

	// The rest of the program is still migrated
	assert.Equal(t, migratedGroovyTestTask, printChanges(t, result)["TestTask.groovy"])
}
