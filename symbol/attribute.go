package symbol

import (
	"strings"

	"github.com/NickyBoy89/propmigrate/javatype"
	"github.com/NickyBoy89/propmigrate/tree"
	log "github.com/sirupsen/logrus"
)

// attributor records the types of the expressions in a file. It is copied
// whenever a new scope is entered, so each copy only sees its own locals
type attributor struct {
	gs      *GlobalSymbols
	tc      typeContext
	dialect tree.Dialect
	locals  *localScope
}

func (gs *GlobalSymbols) attributeFile(file *FileScope) {
	a := attributor{
		gs:      gs,
		tc:      typeContext{file: file},
		dialect: file.Unit.Dialect,
		locals:  &localScope{},
	}
	for _, class := range file.Classes {
		a.class(class)
	}
	for _, stmt := range file.Unit.Statements {
		a.stmt(stmt)
	}
}

func (a attributor) class(scope *ClassScope) {
	a.tc.class = scope
	a.tc.methodTypeParams = nil
	a.members(scope.Decl.Members)
	for _, subclass := range scope.Subclasses {
		a.class(subclass)
	}
}

// members attributes the initializers and bodies of a list of members.
// Nested classes are attributed separately, since they have a scope of their own
func (a attributor) members(members []tree.Member) {
	for _, member := range members {
		switch member := member.(type) {
		case *tree.FieldDecl:
			if member.Type.Resolved == nil {
				a.gs.resolveType(member.Type, a.tc)
			}
			for _, variable := range member.Variables {
				if variable.Init != nil {
					a.expr(variable.Init)
				}
			}
		case *tree.MethodDecl:
			a.method(member)
		case *tree.Opaque:
			a.opaque(member)
		}
	}
}

func (a attributor) method(decl *tree.MethodDecl) {
	a.tc.methodTypeParams = decl.TypeParams
	a.locals = a.locals.push()
	for i, param := range decl.Params {
		// Declared methods already have their parameters resolved, but the
		// methods of anonymous classes do not
		var typ javatype.Type
		if decl.Method != nil && i < len(decl.Method.Params) {
			typ = decl.Method.Params[i]
		} else {
			typ = a.gs.paramType(param, a.tc)
		}
		a.locals.define(param.Name, typ)
	}
	if decl.Body != nil {
		a.stmt(decl.Body)
	}
}

func (a attributor) stmt(stmt tree.Stmt) {
	switch stmt := stmt.(type) {
	case *tree.Block:
		inner := a
		inner.locals = a.locals.push()
		for _, child := range stmt.Stmts {
			inner.stmt(child)
		}
	case *tree.LocalVar:
		declared := a.gs.resolveType(stmt.Type, a.tc)
		for _, variable := range stmt.Variables {
			a.variable(variable, declared)
		}
	case *tree.ExprStmt:
		a.expr(stmt.X)
	case *tree.Return:
		if stmt.X != nil {
			a.expr(stmt.X)
		}
	case *tree.Opaque:
		a.opaque(stmt)
	}
}

// variable attributes a local variable's initializer, and defines it. An
// inferred type (`var` or `def`) takes the type of the initializer
func (a attributor) variable(variable *tree.Variable, declared javatype.Type) {
	if variable.Init != nil {
		a.expr(variable.Init)
	}
	typ := arrayOf(declared, variable.Dims)
	if typ == nil && variable.Init != nil {
		typ = variable.Init.Type()
	}
	a.locals.define(variable.Name, typ)
}

// opaque attributes everything nested inside of a construct that is not
// modeled. Parameters declared inside of it, such as the variable of a
// for-each loop, are in scope for the rest of its children
func (a attributor) opaque(opaque *tree.Opaque) {
	inner := a
	inner.locals = a.locals.push()
	for _, child := range opaque.Children {
		inner.node(child)
	}
}

func (a attributor) node(n tree.Node) {
	switch n := n.(type) {
	case *tree.Opaque:
		a.opaque(n)
	case *tree.Param:
		a.locals.define(n.Name, a.gs.paramType(n, a.tc))
	case *tree.Variable:
		a.variable(n, nil)
	case *tree.TypeExpr:
		a.gs.resolveType(n, a.tc)
	case *tree.ClassDecl:
		// Local classes are not in the symbol table, but their bodies may
		// still call methods on classes that are
		a.members(n.Members)
	case tree.Expr:
		a.expr(n)
	case tree.Stmt:
		a.stmt(n)
	}
}

func (a attributor) expr(expr tree.Expr) {
	switch expr := expr.(type) {
	case *tree.Literal:
		expr.SetType(a.gs.TypeOfLiteral(expr))
	case *tree.Ident:
		expr.SetType(a.ident(expr.Name))
	case *tree.This:
		if a.tc.class != nil {
			expr.SetType(a.tc.class.Class)
		}
	case *tree.FieldAccess:
		a.expr(expr.X)
		expr.SetType(a.fieldAccess(expr))
	case *tree.MethodCall:
		a.methodCall(expr)
	case *tree.New:
		for _, arg := range expr.Args {
			a.expr(arg)
		}
		if expr.Body != nil {
			a.members(expr.Body)
		}
		expr.SetType(a.gs.resolveType(expr.Class, a.tc))
	case *tree.Cast:
		a.expr(expr.X)
		expr.SetType(a.gs.resolveType(expr.Target, a.tc))
	case *tree.Paren:
		a.expr(expr.X)
		expr.SetType(expr.X.Type())
	case *tree.Lambda:
		a.lambda(expr, nil)
	case *tree.Opaque:
		a.opaque(expr)
	}
}

// lambda attributes the body of a lambda or closure. A single parameter
// without a declared type takes the type of the delegate, when it is known
func (a attributor) lambda(lambda *tree.Lambda, delegate javatype.Type) {
	inner := a
	inner.locals = a.locals.push()
	for _, param := range lambda.Params {
		typ := inner.gs.paramType(param, inner.tc)
		if typ == nil && len(lambda.Params) == 1 {
			typ = delegate
		}
		inner.locals.define(param.Name, typ)
	}
	if lambda.Body != nil {
		inner.node(lambda.Body)
	}
}

// classReference returns the class that an argument refers to, as in
// `T.class`, or a bare `T` in Groovy
func (a attributor) classReference(arg tree.Expr) javatype.Type {
	switch arg := arg.(type) {
	case *tree.Opaque:
		if arg.Kind != "class_literal" || len(arg.Children) != 1 {
			return nil
		}
		if typ, ok := arg.Children[0].(*tree.TypeExpr); ok {
			return typ.Resolved
		}
	case *tree.Ident:
		if a.locals.FindVariable(arg.Name) != nil {
			return nil
		}
		if class := a.gs.lookupClass(arg.Name, a.tc); class != nil && arg.Type() == javatype.Type(class.Class) {
			return class.Class
		}
	}
	return nil
}

// ident resolves a bare name, which is either a local, a field of one of the
// enclosing classes, or the name of a class
func (a attributor) ident(name string) javatype.Type {
	if local := a.locals.FindVariable(name); local != nil {
		return local.Type
	}
	for class := a.tc.class; class != nil; class = class.Outer {
		if fields := class.FindField().ByName(name); len(fields) > 0 {
			return fields[0].Type
		}
		if a.dialect == tree.Groovy {
			if getter := a.getter(class.Class, name); getter != nil {
				return getter.Return
			}
		}
	}
	if class := a.gs.lookupClass(name, a.tc); class != nil {
		return class.Class
	}
	return nil
}

func (a attributor) fieldAccess(access *tree.FieldAccess) javatype.Type {
	recv := access.X.Type()
	if recv == nil {
		// The receiver may be a package, making this a qualified class name
		if name, ok := qualifiedName(access); ok {
			if class := a.gs.lookupClass(name, a.tc); class != nil {
				return class.Class
			}
		}
		return nil
	}

	if _, ok := recv.(*javatype.Array); ok && access.Name == "length" {
		return javatype.Int
	}

	class := javatype.ClassOf(recv)
	if class == nil {
		return nil
	}

	// Groovy property syntax goes through the getter whenever there is one
	if a.dialect == tree.Groovy {
		if getter := a.getter(class, access.Name); getter != nil {
			return MemberOf(recv, getter).Return
		}
	}
	if field := class.FindField(access.Name); field != nil {
		return substitute(field.Type, bindingsFor(recv, field.Declaring))
	}
	// A nested class, referred to through its enclosing class
	if scope := a.gs.FindClass(class.FQN); scope != nil {
		if nested := scope.nested(access.Name); nested != nil {
			return nested.Class
		}
	}
	return nil
}

// getter finds the no-argument getter for a Groovy property
func (a attributor) getter(class *javatype.Class, property string) *javatype.Method {
	if property == "" {
		return nil
	}
	name := "get" + strings.ToUpper(property[:1]) + property[1:]
	for _, method := range class.AllMethods() {
		if method.Name == name && len(method.Params) == 0 {
			return method
		}
	}
	return nil
}

func (a attributor) methodCall(call *tree.MethodCall) {
	if call.Recv != nil {
		a.expr(call.Recv)
	}

	// Lambdas go last, so that their parameters can take the class that the
	// call names, as Gradle's `register(name, T) { it.x() }` does
	var lambdas []*tree.Lambda
	var delegate javatype.Type
	for _, arg := range call.Args {
		if lambda, ok := arg.(*tree.Lambda); ok {
			lambdas = append(lambdas, lambda)
			continue
		}
		a.expr(arg)
		if delegate == nil {
			delegate = a.classReference(arg)
		}
	}
	for _, lambda := range lambdas {
		a.lambda(lambda, delegate)
	}

	var receivers []javatype.Type
	if call.Recv != nil {
		if recv := call.Recv.Type(); recv != nil {
			receivers = append(receivers, recv)
		}
	} else {
		// Unqualified calls search the enclosing classes from the inside out
		for class := a.tc.class; class != nil; class = class.Outer {
			receivers = append(receivers, class.Class)
		}
	}

	for _, recv := range receivers {
		class := javatype.ClassOf(recv)
		if class == nil {
			continue
		}
		if method := a.selectMethod(recv, class, call); method != nil {
			method = MemberOf(recv, method)
			call.Method = method
			call.SetType(method.Return)
			return
		}
	}

	fields := log.Fields{"method": call.Name, "file": a.tc.file.Path}
	if call.Recv != nil && call.Recv.Type() != nil {
		fields["receiver"] = call.Recv.Type().String()
	}
	log.WithFields(fields).Debug("Unresolved method call")
}

// selectMethod picks the overload that a call invokes. Overloads that accept
// the arguments without any boxing are preferred over the ones that need it,
// and a single overload of the right arity is taken when neither fits
func (a attributor) selectMethod(recv javatype.Type, class *javatype.Class, call *tree.MethodCall) *javatype.Method {
	var candidates []*javatype.Method
	for _, method := range class.AllMethods() {
		if method.Name == call.Name && method.Return != nil && len(method.Params) == len(call.Args) {
			candidates = append(candidates, method)
		}
	}

	for _, boxing := range []bool{false, true} {
		for _, method := range candidates {
			if a.acceptsAll(MemberOf(recv, method).Params, call.Args, boxing) {
				return method
			}
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}

func (a attributor) acceptsAll(params []javatype.Type, args []tree.Expr, boxing bool) bool {
	for i, param := range params {
		if !a.gs.Accepts(param, args[i].Type(), boxing) {
			return false
		}
	}
	return true
}

// primitive widening conversions, from each primitive to the primitives that
// can hold it
var widenings = map[string][]string{
	"byte":  {"short", "int", "long", "float", "double"},
	"short": {"int", "long", "float", "double"},
	"char":  {"int", "long", "float", "double"},
	"int":   {"long", "float", "double"},
	"long":  {"float", "double"},
	"float": {"double"},
}

// Accepts reports whether a value of type arg can be passed to a parameter of
// type param, optionally allowing boxing conversions. Unknown types are
// accepted, so that unresolved code never rules out an overload
func (gs *GlobalSymbols) Accepts(param, arg javatype.Type, boxing bool) bool {
	if param == nil || arg == nil {
		return true
	}
	if _, unknown := param.(*javatype.Unknown); unknown {
		return true
	}
	if param.IsAssignableFrom(arg) {
		return true
	}

	argPrimitive, argIsPrimitive := arg.(*javatype.Primitive)
	paramPrimitive, paramIsPrimitive := param.(*javatype.Primitive)
	switch {
	case argIsPrimitive && paramIsPrimitive:
		for _, wider := range widenings[argPrimitive.Keyword] {
			if wider == paramPrimitive.Keyword {
				return true
			}
		}
		return false
	case !boxing:
		return false
	case argIsPrimitive:
		name, ok := javatype.BoxedName(argPrimitive)
		if !ok {
			return false
		}
		if _, typeVar := param.(*javatype.TypeVar); typeVar {
			return true
		}
		boxed := gs.Class(name)
		return boxed != nil && param.IsAssignableFrom(boxed)
	case paramIsPrimitive:
		name, ok := javatype.BoxedName(paramPrimitive)
		return ok && arg.FullyQualifiedName() == name
	}
	return false
}

// qualifiedName turns a chain of identifiers into a dotted name
func qualifiedName(expr tree.Expr) (string, bool) {
	switch expr := expr.(type) {
	case *tree.Ident:
		return expr.Name, true
	case *tree.FieldAccess:
		prefix, ok := qualifiedName(expr.X)
		if !ok {
			return "", false
		}
		return prefix + "." + expr.Name, true
	}
	return "", false
}
