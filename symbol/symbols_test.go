package symbol

import (
	"context"
	"testing"

	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/parsing"
	"github.com/NickyBoy89/propmigrate/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTask = `package org.example;

import org.gradle.api.DefaultTask;
import org.gradle.api.provider.Property;
import org.gradle.api.tasks.Input;

public class TestTask extends DefaultTask {
    private String property;
    private final Property<Integer> count;

    @Input
    public String getProperty() {
        return property;
    }

    public void setProperty(String value) {
        this.property = value;
    }

    public Property<Integer> getCount() {
        return count;
    }
}
`

const testPlugin = `package org.example;

public class TestPlugin {
    public void apply() {
        TestTask task = new TestTask();
        task.setProperty("Demo value");
        task.getCount().set(1);
    }
}
`

func load(t *testing.T, files map[string]string) (*GlobalSymbols, map[string]*tree.SourceUnit) {
	t.Helper()
	units := make(map[string]*tree.SourceUnit)
	var list []*tree.SourceUnit
	for path, source := range files {
		unit, err := parsing.Parse(context.Background(), path, []byte(source))
		require.NoError(t, err)
		units[path] = unit
		list = append(list, unit)
	}
	gs, err := Load(context.Background(), list)
	require.NoError(t, err)
	return gs, units
}

func calls(unit *tree.SourceUnit) []*tree.MethodCall {
	var found []*tree.MethodCall
	tree.Inspect(unit, func(c *tree.Cursor) bool {
		if call, ok := c.Node().(*tree.MethodCall); ok {
			found = append(found, call)
		}
		return true
	})
	return found
}

func TestLoadDeclaresClasses(t *testing.T) {
	gs, _ := load(t, map[string]string{"TestTask.java": testTask})

	task := gs.FindClass("org.example.TestTask")
	require.NotNil(t, task)
	assert.True(t, task.Class.Extends("org.gradle.api.DefaultTask"))
	assert.True(t, task.Class.Extends("org.gradle.api.Task"))
	assert.True(t, task.Class.Extends(javatype.ObjectName))

	assert.NotNil(t, gs.FindPackage("org.example"))
	assert.Contains(t, gs.ClassNames(), "org.gradle.api.provider.Property")
	assert.Contains(t, gs.String(), "org.example")
}

func TestLoadResolvesMembers(t *testing.T) {
	gs, units := load(t, map[string]string{"TestTask.java": testTask})
	task := gs.FindClass("org.example.TestTask")

	fields := task.FindField().ByName("property")
	require.Len(t, fields, 1)
	assert.Equal(t, "java.lang.String", fields[0].Type.FullyQualifiedName())

	getters := task.FindMethod().ByName("getProperty")
	require.Len(t, getters, 1)
	assert.True(t, getters[0].HasAnnotation("org.gradle.api.tasks.Input"))
	assert.Equal(t, "java.lang.String", getters[0].Return.FullyQualifiedName())

	count := task.FindMethod().ByName("getCount")
	require.Len(t, count, 1)
	assert.Equal(t, "org.gradle.api.provider.Property<java.lang.Integer>", count[0].Return.String())

	// Inherited methods are found as well
	assert.NotEmpty(t, task.FindMethod().ByName("getName"))

	getter := units["TestTask.java"].Types[0].Members[2].(*tree.MethodDecl)
	require.NotNil(t, getter.Method)
	assert.True(t, getter.HasAnnotation("org.gradle.api.tasks.Input"))
}

func TestLoadAttributesCalls(t *testing.T) {
	_, units := load(t, map[string]string{
		"TestTask.java":   testTask,
		"TestPlugin.java": testPlugin,
	})

	found := calls(units["TestPlugin.java"])
	require.Len(t, found, 3)

	setter := found[0]
	assert.Equal(t, "setProperty", setter.Name)
	require.NotNil(t, setter.Method)
	assert.Equal(t, "org.example.TestTask", setter.Method.Declaring.FQN)
	assert.Equal(t, "org.example.TestTask", setter.Recv.Type().FullyQualifiedName())
	assert.Equal(t, javatype.Void, setter.Type())

	// Property<Integer>.set(T) is seen as set(Integer), and takes an int by boxing
	set := found[1]
	assert.Equal(t, "set", set.Name)
	require.NotNil(t, set.Method)
	require.Len(t, set.Method.Params, 1)
	assert.Equal(t, "java.lang.Integer", set.Method.Params[0].String())
	assert.Equal(t, "org.gradle.api.provider.Property<java.lang.Integer>", set.Recv.Type().String())
}

func TestLoadTypesClosureParameters(t *testing.T) {
	_, units := load(t, map[string]string{
		"TestTask.java": testTask,
		"GroovyPlugin.groovy": `package org.example

class GroovyPlugin {
    def <T> T register(String name, Class<T> type, Closure action) {
        return null
    }

    void apply() {
        register("typed", TestTask) { TestTask task ->
            task.setProperty("Demo value")
        }
        register("implicit", TestTask) {
            it.setProperty('Demo value')
        }
    }
}
`,
		"JavaPlugin.java": `package org.example;

public class JavaPlugin {
    <T> T register(String name, Class<T> type, Object action) {
        return null;
    }

    void apply() {
        register("implicit", TestTask.class, task -> task.setProperty("Demo value"));
    }
}
`,
	})

	for _, path := range []string{"GroovyPlugin.groovy", "JavaPlugin.java"} {
		var setters []*tree.MethodCall
		for _, call := range calls(units[path]) {
			if call.Name == "setProperty" {
				setters = append(setters, call)
			}
		}
		require.NotEmpty(t, setters, path)
		for _, setter := range setters {
			require.NotNil(t, setter.Recv.Type(), path)
			assert.Equal(t, "org.example.TestTask", setter.Recv.Type().FullyQualifiedName(), path)
			require.NotNil(t, setter.Method, path)
			assert.Equal(t, "org.example.TestTask", setter.Method.Declaring.FQN, path)
		}
	}
}

func TestLoadResolvesNestedAndImportedTypes(t *testing.T) {
	source := `package org.example;

import java.util.*;

class Outer {
    static class Inner {
        List<String> names;
    }

    Inner inner;
    Map<String, Inner> byName;
}
`
	gs, _ := load(t, map[string]string{"Outer.java": source})

	inner := gs.FindClass("org.example.Outer$Inner")
	require.NotNil(t, inner)
	assert.Equal(t, "Inner", inner.Class.SimpleName())
	assert.Equal(t, "org.example", inner.Class.PackageName())

	names := inner.FindField().ByName("names")
	require.Len(t, names, 1)
	assert.Equal(t, "java.util.List<java.lang.String>", names[0].Type.String())

	outer := gs.FindClass("org.example.Outer")
	byName := outer.FindField().ByName("byName")
	require.Len(t, byName, 1)
	assert.Equal(t, "java.util.Map<java.lang.String, org.example.Outer$Inner>", byName[0].Type.String())
}

func TestAccepts(t *testing.T) {
	gs, _ := load(t, nil)
	integer := gs.Class("java.lang.Integer")
	number := gs.Class("java.lang.Number")
	str := gs.Class("java.lang.String")

	assert.True(t, gs.Accepts(integer, integer, false))
	assert.True(t, gs.Accepts(number, integer, false))
	assert.False(t, gs.Accepts(integer, javatype.Int, false))
	assert.True(t, gs.Accepts(integer, javatype.Int, true))
	assert.True(t, gs.Accepts(number, javatype.Int, true))
	assert.False(t, gs.Accepts(str, javatype.Int, true))
	assert.True(t, gs.Accepts(javatype.Long, javatype.Int, false))
	assert.False(t, gs.Accepts(javatype.Int, javatype.Long, true))
	assert.True(t, gs.Accepts(javatype.Int, integer, true))
	assert.True(t, gs.Accepts(nil, str, false))
	assert.True(t, gs.Accepts(&javatype.TypeVar{Name: "T"}, javatype.Boolean, true))
}
