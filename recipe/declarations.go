package recipe

import (
	"context"

	"github.com/NickyBoy89/propmigrate/analysis"
	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/tree"
	log "github.com/sirupsen/logrus"
)

// MigrateDeclarations rewrites the declarations of every collected property:
// the field and the getter are typed as the wrapper, the field is made final,
// and the setter is deleted
type MigrateDeclarations struct{}

func (MigrateDeclarations) Name() string { return "migrate-declarations" }

func (MigrateDeclarations) DisplayName() string {
	return "Rewrite field, getter and setter for every plain property to a Property API"
}

func (MigrateDeclarations) Description() string {
	return "Change the field and the getter of every collected property to `Property<T>`, and remove its setter."
}

func (p MigrateDeclarations) Run(ctx context.Context, run *Run) error {
	lookup := run.Lookup()
	return run.eachUnit(ctx, p.Name(), func(_ context.Context, unit *tree.SourceUnit) (*tree.SourceUnit, error) {
		rewriter := &declarationRewriter{
			memberRewriter: memberRewriter{run: run, unit: unit, recipe: p.Name()},
			lookup:         lookup,
		}
		updated, err := tree.Transform(unit, rewriter)
		if err != nil {
			return nil, err
		}
		if updated == unit {
			return unit, nil
		}
		return addWrapperImport(updated, run.Config), nil
	})
}

// memberRewriter holds what the recipes that rewrite declarations share
type memberRewriter struct {
	tree.BaseVisitor
	run    *Run
	unit   *tree.SourceUnit
	recipe string
}

func (m *memberRewriter) warn(typeName, property, message string) {
	m.run.Report(Diagnostic{
		Severity: Warning,
		Recipe:   m.recipe,
		Path:     m.unit.Path,
		Type:     typeName,
		Property: property,
		Message:  message,
	})
}

// migrateGetter retypes a getter to return the wrapper
func (m *memberRewriter) migrateGetter(typeName string, method *tree.MethodDecl) (tree.Member, error) {
	property := GetterToField(method.Name)
	wrapped, err := m.run.wrapTypeExpr(method.ReturnType)
	if err != nil {
		return nil, err
	}
	if wrapped == nil {
		m.warn(typeName, property, "return type of "+method.Name+" is not resolved, leaving the getter unchanged")
		return method, nil
	}

	updated := method.WithReturnType(wrapped)
	if method.Method != nil {
		updated = updated.WithMethod(method.Method.WithReturn(wrapped.Resolved))
	}
	log.WithFields(log.Fields{
		"getter": method.Name,
		"type":   wrapped.Resolved.String(),
		"path":   m.unit.Path,
	}).Debug("Migrated getter")
	return updated, nil
}

type declarationRewriter struct {
	memberRewriter
	lookup analysis.Lookup
}

func (d *declarationRewriter) VisitMember(c *tree.Cursor, member tree.Member) (tree.Member, error) {
	class := c.EnclosingClass()
	if class == nil || class.Class == nil || !d.lookup.HasType(class.Class.FQN) {
		return member, nil
	}
	typeName := class.Class.FQN

	switch member := member.(type) {
	case *tree.MethodDecl:
		if isSetterDecl(member) && d.lookup.Has(typeName, SetterToField(member.Name)) {
			log.WithFields(log.Fields{
				"setter":   member.Name,
				"property": qualify(typeName, SetterToField(member.Name)),
				"path":     d.unit.Path,
			}).Debug("Removed setter")
			return nil, nil
		}
		if d.isGetter(member) && d.lookup.Has(typeName, GetterToField(member.Name)) {
			return d.migrateGetter(typeName, member)
		}
	case *tree.FieldDecl:
		return d.migrateField(class.Class, member)
	}
	return member, nil
}

// isGetter reports whether a method is the input getter of a plain property.
// Other accessors of the same property keep their types
func (d *declarationRewriter) isGetter(method *tree.MethodDecl) bool {
	return len(method.Params) == 0 && IsGetterForPlainProperty(method, d.run.Config)
}

func (d *declarationRewriter) migrateField(class *javatype.Class, field *tree.FieldDecl) (tree.Member, error) {
	var property string
	for _, variable := range field.Variables {
		if d.lookup.Has(class.FQN, variable.Name) {
			property = variable.Name
			break
		}
	}
	if property == "" || d.run.isWrapper(field.Type.Resolved) {
		return field, nil
	}

	// Retyping a declaration retypes every variable in it
	if len(field.Variables) > 1 {
		d.warn(class.FQN, property, "field is declared together with other variables, leaving it unchanged")
		return field, nil
	}
	variable := field.Variables[0]
	if variable.Dims > 0 {
		d.warn(class.FQN, property, "field has array dimensions after its name, leaving it unchanged")
		return field, nil
	}

	wrapped, err := d.run.wrapTypeExpr(field.Type)
	if err != nil {
		return nil, err
	}
	if wrapped == nil {
		d.warn(class.FQN, property, "field type is not resolved, leaving the field unchanged")
		return field, nil
	}

	updated := field.WithType(wrapped)
	if !tree.HasModifier(field.Modifiers, "final") {
		modifiers := make([]*tree.Modifier, 0, len(field.Modifiers)+1)
		modifiers = append(modifiers, field.Modifiers...)
		updated = updated.WithModifiers(append(modifiers, tree.NewModifier("final")))
	}

	resolved := &javatype.Field{Name: variable.Name, Type: wrapped.Resolved, Declaring: class}
	return updated.WithVariables([]*tree.Variable{variable.WithField(resolved)}), nil
}
