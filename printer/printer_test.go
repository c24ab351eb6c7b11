package printer

import (
	"context"
	"testing"

	"github.com/NickyBoy89/propmigrate/parsing"
	"github.com/NickyBoy89/propmigrate/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriter is a visitor made out of functions, for rewriting trees in tests
type rewriter struct {
	tree.BaseVisitor
	member func(tree.Member) tree.Member
	expr   func(tree.Expr) tree.Expr
}

func (r rewriter) VisitMember(_ *tree.Cursor, member tree.Member) (tree.Member, error) {
	if r.member == nil {
		return member, nil
	}
	return r.member(member), nil
}

func (r rewriter) VisitExpr(_ *tree.Cursor, expr tree.Expr) (tree.Expr, error) {
	if r.expr == nil {
		return expr, nil
	}
	return r.expr(expr), nil
}

func parse(t *testing.T, path, source string) *tree.SourceUnit {
	t.Helper()
	unit, err := parsing.Parse(context.Background(), path, []byte(source))
	require.NoError(t, err)
	return unit
}

func rewrite(t *testing.T, unit *tree.SourceUnit, v tree.Visitor) string {
	t.Helper()
	updated, err := tree.Transform(unit, v)
	require.NoError(t, err)
	out, err := Print(unit, updated)
	require.NoError(t, err)
	return string(out)
}

func TestPrintUnchanged(t *testing.T) {
	source := "class Task {\n    String label;\n}\n"
	unit := parse(t, "Task.java", source)

	out, err := Print(unit, unit)
	require.NoError(t, err)
	assert.Equal(t, source, string(out))

	assert.Equal(t, source, rewrite(t, unit, rewriter{}))
}

func TestPrintRewrittenCall(t *testing.T) {
	source := `class Plugin {
    void apply() {
        task.setLabel("x");
        other.run();
    }
}
`
	unit := parse(t, "Plugin.java", source)
	out := rewrite(t, unit, rewriter{expr: func(expr tree.Expr) tree.Expr {
		call, ok := expr.(*tree.MethodCall)
		if !ok || call.Name != "setLabel" {
			return expr
		}
		updated := *call
		updated.Recv = tree.NewMethodCall(call.Recv, "getLabel")
		updated.Name = "set"
		return &updated
	}})

	assert.Equal(t, `class Plugin {
    void apply() {
        task.getLabel().set("x");
        other.run();
    }
}
`, out)
}

func TestPrintGroovyPropertyAccess(t *testing.T) {
	source := "class Plugin {\n    void apply() {\n        task.setLabel(\"x\");\n    }\n}\n"
	unit := parse(t, "Plugin.groovy", source)
	out := rewrite(t, unit, rewriter{expr: func(expr tree.Expr) tree.Expr {
		call, ok := expr.(*tree.MethodCall)
		if !ok || call.Name != "setLabel" {
			return expr
		}
		updated := *call
		updated.Recv = tree.NewFieldAccess(call.Recv, "label")
		updated.Name = "set"
		return &updated
	}})
	assert.Equal(t, "class Plugin {\n    void apply() {\n        task.label.set(\"x\");\n    }\n}\n", out)
}

func TestPrintRetypedField(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		expect string
	}{
		{"after modifiers", "private String label;", "private final Property<String> label;"},
		{"already final", "private final String label;", "private final Property<String> label;"},
		{"no modifiers", "String label;", "final Property<String> label;"},
		{"annotation only", "@Deprecated String label;", "@Deprecated final Property<String> label;"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			unit := parse(t, "Task.java", "class Task {\n    "+test.field+"\n}\n")
			out := rewrite(t, unit, rewriter{member: func(member tree.Member) tree.Member {
				field, ok := member.(*tree.FieldDecl)
				if !ok {
					return member
				}
				updated := field.WithType(tree.NewTypeExpr("Property", nil, field.Type))
				if !tree.HasModifier(field.Modifiers, "final") {
					modifiers := append([]*tree.Modifier{}, field.Modifiers...)
					updated = updated.WithModifiers(append(modifiers, tree.NewModifier("final")))
				}
				return updated
			}})
			assert.Equal(t, "class Task {\n    "+test.expect+"\n}\n", out)
		})
	}
}

func TestPrintRemovedMember(t *testing.T) {
	source := `class Task {
    private String label;

    public String getLabel() {
        return label;
    }

    // Sets the label
    public void setLabel(String label) {
        this.label = label;
    }
}
`
	unit := parse(t, "Task.java", source)
	out := rewrite(t, unit, rewriter{member: func(member tree.Member) tree.Member {
		if method, ok := member.(*tree.MethodDecl); ok && method.Name == "setLabel" {
			return nil
		}
		return member
	}})

	assert.Equal(t, `class Task {
    private String label;

    public String getLabel() {
        return label;
    }
}
`, out)
}

func TestPrintAddedImport(t *testing.T) {
	property := tree.NewImport("org.gradle.api.provider.Property")

	tests := []struct {
		name   string
		path   string
		source string
		at     int
		expect string
	}{
		{
			name:   "before a later import",
			path:   "Task.java",
			source: "package a;\n\nimport org.gradle.api.tasks.Input;\n\nclass Task {}\n",
			at:     0,
			expect: "package a;\n\nimport org.gradle.api.provider.Property;\nimport org.gradle.api.tasks.Input;\n\nclass Task {}\n",
		},
		{
			name:   "after an earlier import",
			path:   "Task.java",
			source: "import org.gradle.api.Task;\n\nclass Task {}\n",
			at:     1,
			expect: "import org.gradle.api.Task;\nimport org.gradle.api.provider.Property;\n\nclass Task {}\n",
		},
		{
			name:   "after the package",
			path:   "Task.java",
			source: "package a;\n\nclass Task {}\n",
			at:     0,
			expect: "package a;\n\nimport org.gradle.api.provider.Property;\n\nclass Task {}\n",
		},
		{
			name:   "before the first type",
			path:   "Task.java",
			source: "class Task {}\n",
			at:     0,
			expect: "import org.gradle.api.provider.Property;\n\nclass Task {}\n",
		},
		{
			name:   "groovy",
			path:   "Task.groovy",
			source: "package a;\n\nclass Task {}\n",
			at:     0,
			expect: "package a;\n\nimport org.gradle.api.provider.Property\n\nclass Task {}\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			unit := parse(t, test.path, test.source)
			imports := append([]*tree.Import{}, unit.Imports[:test.at]...)
			imports = append(imports, property)
			imports = append(imports, unit.Imports[test.at:]...)

			out, err := Print(unit, unit.WithImports(imports))
			require.NoError(t, err)
			assert.Equal(t, test.expect, string(out))
		})
	}
}

func TestApplyRejectsOverlappingEdits(t *testing.T) {
	_, err := apply([]byte("abcdef"), 0, []edit{
		{Span: tree.Span{Start: 1, End: 4}, Text: "x"},
		{Span: tree.Span{Start: 3, End: 5}, Text: "y"},
	})
	assert.Error(t, err)

	out, err := apply([]byte("abcdef"), 0, []edit{
		{Span: tree.Span{Start: 4, End: 6}, Text: "Z"},
		{Span: tree.Span{Start: 0, End: 0}, Text: ">"},
		{Span: tree.Span{Start: 1, End: 3}, Text: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, ">adZ", string(out))
}

func TestPrintRejectsMismatchedUnits(t *testing.T) {
	a := parse(t, "A.java", "class A {}\n")
	b := parse(t, "B.java", "class B {}\n")
	_, err := Print(a, b)
	assert.Error(t, err)
}
