package recipe

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/NickyBoy89/propmigrate/config"
	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/parsing"
	"github.com/NickyBoy89/propmigrate/printer"
	"github.com/NickyBoy89/propmigrate/symbol"
	"github.com/NickyBoy89/propmigrate/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTask = `package org.example;

import org.gradle.api.DefaultTask;
import org.gradle.api.tasks.Input;

public class TestTask extends DefaultTask {
    private String property;

    @Input
    public String getProperty() {
        return property;
    }

    public void setProperty(String value) {
        this.property = value;
    }
}
`

const migratedTestTask = `package org.example;

import org.gradle.api.DefaultTask;
import org.gradle.api.provider.Property;
import org.gradle.api.tasks.Input;

public class TestTask extends DefaultTask {
    private final Property<String> property;

    @Input
    public Property<String> getProperty() {
        return property;
    }
}
`

const testPlugin = `package org.example;

public class TestPlugin {
    public void apply(TestTask task) {
        task.setProperty("Demo value");
    }
}
`

const migratedTestPlugin = `package org.example;

public class TestPlugin {
    public void apply(TestTask task) {
        task.getProperty().set("Demo value");
    }
}
`

// program is a set of files, by path
type program map[string]string

func parseAll(t *testing.T, files program) []*tree.SourceUnit {
	t.Helper()
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	units := make([]*tree.SourceUnit, 0, len(paths))
	for _, path := range paths {
		unit, err := parsing.Parse(context.Background(), path, []byte(files[path]))
		require.NoError(t, err)
		units = append(units, unit)
	}
	return units
}

func execute(t *testing.T, r Recipe, files program, cfg config.Config) (*Result, error) {
	t.Helper()
	units := parseAll(t, files)
	gs, err := symbol.Load(context.Background(), units)
	require.NoError(t, err)
	return Execute(context.Background(), r, units, Options{Config: cfg, Symbols: gs, Workers: 2})
}

// migrate runs the whole migration, and prints every unit that it changed
func migrate(t *testing.T, files program) (program, *Result) {
	t.Helper()
	result, err := execute(t, MigrateToProviderAPI{}, files, config.Default())
	require.NoError(t, err)
	return printChanges(t, result), result
}

func printChanges(t *testing.T, result *Result) program {
	t.Helper()
	out := make(program)
	for _, change := range result.Changes {
		text, err := printer.Print(change.Before, change.After)
		require.NoError(t, err)
		out[change.Before.Path] = string(text)
	}
	return out
}

func TestMigrateToProviderAPI(t *testing.T) {
	out, result := migrate(t, program{
		"src/TestTask.java":   testTask,
		"src/TestPlugin.java": testPlugin,
	})

	assert.Equal(t, program{
		"src/TestTask.java":   migratedTestTask,
		"src/TestPlugin.java": migratedTestPlugin,
	}, out)
	assert.Empty(t, result.Diagnostics)
	assert.Len(t, result.Units, 2)
}

func TestMigrateToProviderAPIIsIdempotent(t *testing.T) {
	out, _ := migrate(t, program{
		"src/TestTask.java":   migratedTestTask,
		"src/TestPlugin.java": migratedTestPlugin,
	})
	assert.Empty(t, out)
}

func TestMigrateGroovyCaller(t *testing.T) {
	out, _ := migrate(t, program{
		"src/TestTask.java": testTask,
		"src/TestPlugin.groovy": `package org.example;

class TestPlugin {
    void apply(TestTask task) {
        task.setProperty("Demo value");
    }
}
`,
	})

	assert.Equal(t, migratedTestTask, out["src/TestTask.java"])
	assert.Equal(t, `package org.example;

class TestPlugin {
    void apply(TestTask task) {
        task.property.set("Demo value");
    }
}
`, out["src/TestPlugin.groovy"])
}

func TestMigrateLeavesAnonymousClassMembers(t *testing.T) {
	out, result := migrate(t, program{
		"src/TestTask.java": `package org.example;

import org.gradle.api.DefaultTask;
import org.gradle.api.tasks.Input;

public class TestTask extends DefaultTask {
    private String property;

    @Input
    public String getProperty() {
        return property;
    }

    public void setProperty(String value) {
        this.property = value;
    }

    public Object helper() {
        return new Object() {
            private String property;

            public void setProperty(String value) {
                this.property = value;
            }

            public String getProperty() {
                return property;
            }

            public void configure(TestTask task) {
                task.setProperty("Demo value");
            }
        };
    }
}
`,
	})

	assert.Equal(t, `package org.example;

import org.gradle.api.DefaultTask;
import org.gradle.api.provider.Property;
import org.gradle.api.tasks.Input;

public class TestTask extends DefaultTask {
    private final Property<String> property;

    @Input
    public Property<String> getProperty() {
        return property;
    }

    public Object helper() {
        return new Object() {
            private String property;

            public void setProperty(String value) {
                this.property = value;
            }

            public String getProperty() {
                return property;
            }

            public void configure(TestTask task) {
                task.getProperty().set("Demo value");
            }
        };
    }
}
`, out["src/TestTask.java"])
	assert.Empty(t, result.Diagnostics)
}

func TestMigrateOnlyRetypesTheInputGetter(t *testing.T) {
	out, result := migrate(t, program{
		"src/ToggleTask.java": `package org.example;

import org.gradle.api.DefaultTask;
import org.gradle.api.tasks.Input;

public class ToggleTask extends DefaultTask {
    private Boolean enabled;

    @Input
    public Boolean getEnabled() {
        return enabled;
    }

    public Boolean isEnabled() {
        return enabled;
    }

    public void setEnabled(Boolean value) {
        this.enabled = value;
    }
}
`,
	})

	assert.Equal(t, `package org.example;

import org.gradle.api.DefaultTask;
import org.gradle.api.provider.Property;
import org.gradle.api.tasks.Input;

public class ToggleTask extends DefaultTask {
    private final Property<Boolean> enabled;

    @Input
    public Property<Boolean> getEnabled() {
        return enabled;
    }

    public Boolean isEnabled() {
        return enabled;
    }
}
`, out["src/ToggleTask.java"])
	assert.Empty(t, result.Diagnostics)
}

func TestDiagnosticsAreSortedByPath(t *testing.T) {
	files := make(program)
	for _, name := range []string{"Delta", "Alpha", "Charlie", "Bravo", "Echo"} {
		files["src/"+name+"Task.java"] = `package org.example;

import org.gradle.api.DefaultTask;
import org.gradle.api.tasks.Input;

public class ` + name + `Task extends DefaultTask {
    private String first, second;

    @Input
    public String getFirst() {
        return first;
    }
}
`
	}

	for i := 0; i < 5; i++ {
		result, err := execute(t, MigrateToProviderAPI{}, files, config.Default())
		require.NoError(t, err)

		var paths []string
		for _, d := range result.Diagnostics {
			paths = append(paths, d.Path)
		}
		require.Len(t, paths, 5)
		assert.True(t, sort.StringsAreSorted(paths), paths)
	}
}

func TestMigrateBoxesPrimitives(t *testing.T) {
	files := program{
		"src/CountTask.java": `package org.example;

import org.gradle.api.DefaultTask;
import org.gradle.api.tasks.Input;

public class CountTask extends DefaultTask {
    private int count;

    @Input
    public int getCount() {
        return count;
    }

    public void setCount(int count) {
        this.count = count;
    }

    public void reset() {
        setCount(0);
    }
}
`,
		"src/CountPlugin.java": `package org.example;

public class CountPlugin {
    public void apply(CountTask task) {
        task.setCount(5);
    }
}
`,
	}
	result, err := execute(t, MigrateToProviderAPI{}, files, config.Default())
	require.NoError(t, err)
	out := printChanges(t, result)

	assert.Contains(t, out["src/CountTask.java"], "private final Property<Integer> count;")
	assert.Contains(t, out["src/CountTask.java"], "public Property<Integer> getCount() {")
	assert.NotContains(t, out["src/CountTask.java"], "public void setCount")
	// Calls without a receiver are left alone
	assert.Contains(t, out["src/CountTask.java"], "setCount(0);")
	assert.Contains(t, out["src/CountPlugin.java"], "task.getCount().set(5);")

	var set *tree.MethodCall
	for _, unit := range result.Units {
		if unit.Path != "src/CountPlugin.java" {
			continue
		}
		tree.Inspect(unit, func(c *tree.Cursor) bool {
			if call, ok := c.Node().(*tree.MethodCall); ok && call.Name == "set" {
				set = call
			}
			return true
		})
	}
	require.NotNil(t, set)
	require.NotNil(t, set.Method)
	require.Len(t, set.Method.Params, 1)
	assert.Equal(t, "int", set.Method.Params[0].String())

	getter, ok := set.Recv.(*tree.MethodCall)
	require.True(t, ok)
	assert.Equal(t, "getCount", getter.Name)
	assert.Equal(t, "org.gradle.api.provider.Property<java.lang.Integer>", getter.Type().String())
}

func TestMigrateInheritedTaskProperty(t *testing.T) {
	out, _ := migrate(t, program{
		"src/LabelTask.java": `package org.example;

import org.gradle.api.Task;
import org.gradle.api.tasks.Input;

public abstract class LabelTask implements Task {
    private String label;

    @Input
    public String getLabel() {
        return label;
    }

    public void setLabel(String label) {
        this.label = label;
    }
}
`,
		"src/ReleaseTask.java": `package org.example;

public abstract class ReleaseTask extends LabelTask {
}
`,
		"src/ReleasePlugin.java": `package org.example;

public class ReleasePlugin {
    public void apply(ReleaseTask task) {
        task.setLabel("release");
        task.setDescription("Releases the project");
    }
}
`,
	})

	assert.Equal(t, `package org.example;

public class ReleasePlugin {
    public void apply(ReleaseTask task) {
        task.getLabel().set("release");
        task.setDescription("Releases the project");
    }
}
`, out["src/ReleasePlugin.java"])
	assert.NotContains(t, out, "src/ReleaseTask.java")
}

func TestMigrateIgnoresPropertiesThatAreNotInputs(t *testing.T) {
	files := program{
		"src/PlainTask.java": `package org.example;

import org.gradle.api.DefaultTask;

public class PlainTask extends DefaultTask {
    private String property;

    public String getProperty() {
        return property;
    }

    public void setProperty(String value) {
        this.property = value;
    }
}
`,
		"src/PlainPlugin.java": `package org.example;

public class PlainPlugin {
    public void apply(PlainTask task) {
        task.setProperty("Demo value");
    }
}
`,
	}
	result, err := execute(t, MigrateToProviderAPI{}, files, config.Default())
	require.NoError(t, err)
	assert.Empty(t, result.Changes)
	assert.Empty(t, result.Diagnostics)
}

func TestMigrateLeavesMismatchedArgumentsAlone(t *testing.T) {
	out, _ := migrate(t, program{
		"src/TestTask.java": testTask,
		"src/TestPlugin.java": `package org.example;

public class TestPlugin {
    public void apply(TestTask task) {
        task.setProperty(42);
        task.setProperty(null);
    }
}
`,
	})

	assert.Contains(t, out["src/TestPlugin.java"], "task.setProperty(42);")
	assert.Contains(t, out["src/TestPlugin.java"], "task.getProperty().set(null);")
}

func TestMigrateWarnsAboutSharedFieldDeclarations(t *testing.T) {
	result, err := execute(t, MigrateToProviderAPI{}, program{
		"src/PairTask.java": `package org.example;

import org.gradle.api.DefaultTask;
import org.gradle.api.tasks.Input;

public class PairTask extends DefaultTask {
    private String first, second;

    @Input
    public String getFirst() {
        return first;
    }
}
`,
	}, config.Default())
	require.NoError(t, err)
	out := printChanges(t, result)

	assert.Contains(t, out["src/PairTask.java"], "private String first, second;")
	assert.Contains(t, out["src/PairTask.java"], "public Property<String> getFirst() {")
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, Warning, result.Diagnostics[0].Severity)
	assert.Equal(t, "org.example.PairTask", result.Diagnostics[0].Type)
	assert.Equal(t, "first", result.Diagnostics[0].Property)
}

func TestMigrateReportsMissingSetOverload(t *testing.T) {
	cfg := config.Default()
	cfg.WrapperType = "org.gradle.api.provider.Provider"

	result, err := execute(t, MigrateToProviderAPI{}, program{
		"src/TestTask.java":   testTask,
		"src/TestPlugin.java": testPlugin,
	}, cfg)
	require.NoError(t, err)

	var found bool
	for _, d := range result.Diagnostics {
		if d.Severity == Error && d.Recipe == "migrate-set-invocations" {
			found = true
			assert.Contains(t, d.Message, ErrMissingSetOverload.Error())
			assert.Equal(t, "src/TestPlugin.java", d.Path)
			assert.Equal(t, "property", d.Property)
		}
	}
	assert.True(t, found, "expected a diagnostic for the missing set overload")

	out := printChanges(t, result)
	assert.NotContains(t, out, "src/TestPlugin.java")
}

func TestMigrateFailsOnUnboxablePrimitive(t *testing.T) {
	_, err := execute(t, MigrateToProviderAPI{}, program{
		"src/TestTask.java": testTask,
		"src/TestPlugin.java": `package org.example;

public class TestPlugin {
    public void run() {
    }

    public void apply(TestTask task) {
        task.setProperty(run());
    }
}
`,
	}, config.Default())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedPrimitive))
}

func TestCollectPlainProperties(t *testing.T) {
	units := parseAll(t, program{
		"src/TestTask.java":   testTask,
		"src/TestPlugin.java": testPlugin,
	})
	gs, err := symbol.Load(context.Background(), units)
	require.NoError(t, err)

	var run *Run
	collect := recipeFunc(func(ctx context.Context, r *Run) error {
		run = r
		return CollectPlainProperties{}.Run(ctx, r)
	})
	result, err := Execute(context.Background(), collect, units, Options{Config: config.Default(), Symbols: gs})
	require.NoError(t, err)
	assert.Empty(t, result.Changes)

	lookup := run.Lookup()
	assert.True(t, lookup.Has("org.example.TestTask", "property"))
	assert.Equal(t, 1, lookup.Len())
	assert.Equal(t, tree.Java, lookup.Dialect("src/TestPlugin.java"))
}

func TestPlainTaskPropertyToProviderAPI(t *testing.T) {
	result, err := execute(t, PlainTaskPropertyToProviderAPI{}, program{
		"src/TestTask.java": testTask,
	}, config.Default())
	require.NoError(t, err)
	out := printChanges(t, result)

	text := out["src/TestTask.java"]
	assert.Contains(t, text, "import org.gradle.api.provider.Property;")
	assert.Contains(t, text, "public Property<String> getProperty() {")
	assert.Contains(t, text, "private String property;")
	assert.Contains(t, text, "public void setProperty(String value) {")
}

func TestExecuteRequiresWrapperOnClasspath(t *testing.T) {
	cfg := config.Default()
	cfg.WrapperType = "org.example.Missing"
	_, err := execute(t, MigrateToProviderAPI{}, program{"src/TestTask.java": testTask}, cfg)
	assert.Error(t, err)

	_, err = Execute(context.Background(), MigrateToProviderAPI{}, nil, Options{Config: config.Default()})
	assert.Error(t, err)
}

func TestExecuteHonorsCancellation(t *testing.T) {
	units := parseAll(t, program{"src/TestTask.java": testTask})
	gs, err := symbol.Load(context.Background(), units)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	failing := recipeFunc(func(ctx context.Context, r *Run) error {
		return r.eachUnit(ctx, "cancelled", func(ctx context.Context, unit *tree.SourceUnit) (*tree.SourceUnit, error) {
			return nil, ctx.Err()
		})
	})
	_, err = Execute(ctx, failing, units, Options{Config: config.Default(), Symbols: gs})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEachUnitReportsPanics(t *testing.T) {
	units := parseAll(t, program{
		"src/TestTask.java":   testTask,
		"src/TestPlugin.java": testPlugin,
	})
	gs, err := symbol.Load(context.Background(), units)
	require.NoError(t, err)

	panicking := recipeFunc(func(ctx context.Context, r *Run) error {
		return r.eachUnit(ctx, "panicking", func(_ context.Context, unit *tree.SourceUnit) (*tree.SourceUnit, error) {
			if unit.Path == "src/TestPlugin.java" {
				panic("boom")
			}
			return unit.WithImports(nil), nil
		})
	})
	result, err := Execute(context.Background(), panicking, units, Options{Config: config.Default(), Symbols: gs})
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "src/TestPlugin.java", result.Diagnostics[0].Path)
	assert.Contains(t, result.Diagnostics[0].Message, "boom")
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "src/TestTask.java", result.Changes[0].Before.Path)
}

// recipeFunc runs a function as a recipe
type recipeFunc func(ctx context.Context, run *Run) error

func (recipeFunc) Name() string        { return "func" }
func (recipeFunc) DisplayName() string { return "Function" }
func (recipeFunc) Description() string { return "Runs a function." }

func (f recipeFunc) Run(ctx context.Context, run *Run) error { return f(ctx, run) }

func TestAccessorNames(t *testing.T) {
	assert.Equal(t, "label", GetterToField("getLabel"))
	assert.Equal(t, "enabled", GetterToField("isEnabled"))
	assert.Equal(t, "get", GetterToField("get"))
	assert.Equal(t, "uRL", GetterToField("getURL"))
	assert.Equal(t, "label", SetterToField("setLabel"))
	assert.Equal(t, "getLabel", SetterToGetter("setLabel"))
	assert.Equal(t, "run", SetterToGetter("run"))
}

func TestBox(t *testing.T) {
	name, err := Box(javatype.PrimitiveFor("int"))
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Integer", name)

	name, err = Box(javatype.PrimitiveFor("boolean"))
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Boolean", name)

	_, err = Box(javatype.Void)
	assert.ErrorIs(t, err, ErrUnsupportedPrimitive)
}

func TestAddWrapperImport(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		name    string
		source  string
		imports []string
		changed bool
	}{
		{
			name:    "sorted among imports",
			source:  "import org.gradle.api.DefaultTask;\nimport org.gradle.api.tasks.Input;\nclass A {}\n",
			imports: []string{"org.gradle.api.DefaultTask", "org.gradle.api.provider.Property", "org.gradle.api.tasks.Input"},
			changed: true,
		},
		{
			name:    "static imports are not neighbors",
			source:  "import static org.junit.Assert.assertTrue;\nclass A {}\n",
			imports: []string{"org.gradle.api.provider.Property", "org.junit.Assert.assertTrue"},
			changed: true,
		},
		{
			name:    "already imported",
			source:  "import org.gradle.api.provider.Property;\nclass A {}\n",
			imports: []string{"org.gradle.api.provider.Property"},
		},
		{
			name:    "wildcard import",
			source:  "import org.gradle.api.provider.*;\nclass A {}\n",
			imports: []string{"org.gradle.api.provider"},
		},
		{
			name:   "same package",
			source: "package org.gradle.api.provider;\nclass A {}\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			unit, err := parsing.Parse(context.Background(), "A.java", []byte(test.source))
			require.NoError(t, err)

			updated := addWrapperImport(unit, cfg)
			assert.Equal(t, test.changed, updated != unit)

			var imports []string
			for _, imp := range updated.Imports {
				imports = append(imports, imp.Path)
			}
			assert.Equal(t, test.imports, imports)
		})
	}
}

func TestByName(t *testing.T) {
	for _, r := range All() {
		found, ok := ByName(r.Name())
		require.True(t, ok, r.Name())
		assert.Equal(t, r.Name(), found.Name())
		assert.NotEmpty(t, r.DisplayName())
		assert.NotEmpty(t, r.Description())
	}

	_, ok := ByName("no-such-recipe")
	assert.False(t, ok)

	// The rewriting steps do nothing without discovery
	for _, name := range []string{"migrate-declarations", "migrate-set-invocations"} {
		_, ok := ByName(name)
		assert.False(t, ok, name)
	}

	steps := MigrateToProviderAPI{}.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, "collect-plain-properties", steps[0].Name())
	assert.Equal(t, "migrate-declarations", steps[1].Name())
	assert.Equal(t, "migrate-set-invocations", steps[2].Name())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Severity: Warning,
		Path:     "src/A.java",
		Type:     "org.example.A",
		Property: "label",
		Message:  "field type is not resolved",
	}
	assert.Equal(t, "src/A.java: warning: org.example.A.label: field type is not resolved", d.String())
	assert.Equal(t, "Severity(7)", Severity(7).String())
}
