package recipe

import (
	"context"
	"fmt"

	"github.com/NickyBoy89/propmigrate/analysis"
	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/symbol"
	"github.com/NickyBoy89/propmigrate/tree"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// migratedViewSize is how many classes the migrated view remembers
const migratedViewSize = 1024

// MigrateSetInvocations rewrites every call to the setter of a collected
// property into a call to the wrapper's `set`, as `task.getLabel().set(v)`,
// or `task.label.set(v)` in Groovy
type MigrateSetInvocations struct{}

func (MigrateSetInvocations) Name() string { return "migrate-set-invocations" }

func (MigrateSetInvocations) DisplayName() string {
	return "Rewrite setter invocations for properties that were migrated to provider API"
}

func (MigrateSetInvocations) Description() string {
	return "Replace `task.setX(v)` with `task.getX().set(v)` for every collected property, or with `task.x.set(v)` in Groovy."
}

func (p MigrateSetInvocations) Run(ctx context.Context, run *Run) error {
	lookup := run.Lookup()
	cache, err := lru.New[string, []*javatype.Method](migratedViewSize)
	if err != nil {
		return err
	}
	view := &migratedView{run: run, lookup: lookup, cache: cache}

	return run.eachUnit(ctx, p.Name(), func(_ context.Context, unit *tree.SourceUnit) (*tree.SourceUnit, error) {
		return tree.Transform(unit, &invocationRewriter{
			run:     run,
			lookup:  lookup,
			view:    view,
			unit:    unit,
			dialect: lookup.Dialect(unit.Path),
			recipe:  p.Name(),
		})
	})
}

// migratedView presents the methods of a class as they are once the
// declarations are migrated: the getter of every collected property returns
// the wrapper. Call sites are rewritten against this view, so that they do not
// depend on whether the declaring file has been rewritten yet
type migratedView struct {
	run    *Run
	lookup analysis.Lookup
	cache  *lru.Cache[string, []*javatype.Method]
}

// methods returns every method of a class, including the inherited ones
func (v *migratedView) methods(class *javatype.Class) ([]*javatype.Method, error) {
	if methods, ok := v.cache.Get(class.FQN); ok {
		return methods, nil
	}

	all := class.AllMethods()
	methods := make([]*javatype.Method, len(all))
	for i, method := range all {
		methods[i] = method
		if method.Declaring == nil || method.Return == nil || len(method.Params) != 0 {
			continue
		}
		if _, ok := accessorPrefix(method.Name); !ok {
			continue
		}
		if !slices.Contains(method.Annotations, v.run.Config.InputAnnotation) {
			continue
		}
		if !v.lookup.Has(method.Declaring.FQN, GetterToField(method.Name)) || v.run.isWrapper(method.Return) {
			continue
		}
		wrapped, err := v.run.wrap(method.Return)
		if err != nil {
			return nil, err
		}
		methods[i] = method.WithReturn(wrapped)
	}

	v.cache.Add(class.FQN, methods)
	return methods, nil
}

type invocationRewriter struct {
	tree.BaseVisitor
	run     *Run
	lookup  analysis.Lookup
	view    *migratedView
	unit    *tree.SourceUnit
	dialect tree.Dialect
	recipe  string
}

func (r *invocationRewriter) VisitExpr(_ *tree.Cursor, expr tree.Expr) (tree.Expr, error) {
	call, ok := expr.(*tree.MethodCall)
	if !ok || !isSetterCall(call) {
		return expr, nil
	}
	recvType := call.Recv.Type()
	class := javatype.ClassOf(recvType)
	if class == nil {
		return expr, nil
	}

	getterName := SetterToGetter(call.Name)
	property := GetterToField(getterName)

	getters, err := r.candidateGetters(recvType, class, getterName, property)
	if err != nil || len(getters) == 0 {
		return expr, err
	}

	arg := call.Args[0]
	argType, known, err := r.argumentType(arg)
	if err != nil {
		return nil, fmt.Errorf("argument of %s: %w", call.Name, err)
	}
	if !known {
		log.WithFields(log.Fields{
			"call": call.Name,
			"path": r.unit.Path,
		}).Debug("Argument type is not resolved, leaving call unchanged")
		return expr, nil
	}

	var getter *javatype.Method
	for _, candidate := range getters {
		element := candidate.Return.(*javatype.Parameterized).Params[0]
		if argType == nil || element.IsAssignableFrom(argType) {
			getter = candidate
			break
		}
	}
	if getter == nil {
		return expr, nil
	}

	set := r.setOverload(arg.Type())
	if set == nil {
		r.run.Report(Diagnostic{
			Severity: Error,
			Recipe:   r.recipe,
			Path:     r.unit.Path,
			Type:     getter.Declaring.FQN,
			Property: property,
			Message:  fmt.Sprintf("%v: %s", ErrMissingSetOverload, r.run.Config.WrapperType),
		})
		return expr, nil
	}

	var access tree.Expr
	if r.dialect == tree.Groovy {
		field := tree.NewFieldAccess(call.Recv, property)
		field.SetType(getter.Return)
		access = field
	} else {
		access = tree.NewMethodCall(call.Recv, getterName).WithMethod(getter)
	}

	updated := *call
	updated.Recv = access
	updated.Name = set.Name
	updated.Method = set
	updated.SetType(set.Return)
	return &updated, nil
}

// candidateGetters finds the getters that a setter call could be migrated to:
// the ones of a collected property, that return the wrapper in the migrated view
func (r *invocationRewriter) candidateGetters(recv javatype.Type, class *javatype.Class, name, property string) ([]*javatype.Method, error) {
	methods, err := r.view.methods(class)
	if err != nil {
		return nil, err
	}

	var getters []*javatype.Method
	for _, method := range methods {
		if method.Name != name || len(method.Params) != 0 || method.Declaring == nil {
			continue
		}
		if !r.lookup.Has(method.Declaring.FQN, property) {
			continue
		}
		method = symbol.MemberOf(recv, method)
		wrapped, ok := method.Return.(*javatype.Parameterized)
		if !ok || wrapped.Base.FQN != r.run.Config.WrapperType || len(wrapped.Params) != 1 {
			continue
		}
		getters = append(getters, method)
	}
	return getters, nil
}

// argumentType returns the type that an argument is passed to the wrapper as,
// boxing primitives. A `null` argument has no type, but still fits any
// wrapper, so it is reported as known with a nil type
func (r *invocationRewriter) argumentType(arg tree.Expr) (javatype.Type, bool, error) {
	if literal, ok := arg.(*tree.Literal); ok && literal.Kind == tree.NullLiteral {
		return nil, true, nil
	}
	argType := arg.Type()
	if argType == nil {
		return nil, false, nil
	}
	if p, ok := argType.(*javatype.Primitive); ok {
		boxed, err := r.run.boxed(p)
		if err != nil {
			return nil, false, err
		}
		return boxed, true, nil
	}
	return argType, true, nil
}

// setOverload finds the wrapper's `set` method, instantiated for the type of
// the argument at the call site
func (r *invocationRewriter) setOverload(argType javatype.Type) *javatype.Method {
	for _, method := range r.run.Wrapper.Members() {
		if method.Name != "set" || len(method.Params) != 1 {
			continue
		}
		if argType == nil {
			return method
		}
		return method.WithParams([]javatype.Type{argType})
	}
	return nil
}
