package sema

import (
	"strings"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/capture"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/resolve"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
)

// Resolve binds the names used in code to what they refer to, and rewrites
// the forms that only names can disambiguate:
//
//	x          a bare name: FieldAccess of a variable or field, or ClassAccess
//	a.b.C      a qualified class name: ClassAccess
//	C(args)    a call of a class name without such a method: ConstructorCall
//	f(args)    a call of a variable without such a method: call of its functional method
//
// It also declares local variables, creates the capture table of every
// lambda and counts the assignments to locals.
func (c *Checker) Resolve() {
	c.walkBodies(bodies{
		field: func(ctx scope.Context, decl *ast.FieldDecl) {
			decl.Init = c.resolveExpr(ctx, decl.Init)
		},
		method: func(ctx scope.Context, decl *ast.MethodDecl) {
			c.resolveBlock(ctx, decl.Body)
		},
		constructor: func(ctx scope.Context, _ *ast.ClassDecl, decl *ast.ConstructorDecl) {
			c.resolveBlock(ctx, decl.Body)
		},
	})
	c.logger.Debug("resolved names", "diagnostics", c.sink.Len())
}

func (c *Checker) resolveExpr(ctx scope.Context, e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.Literal, *ast.MethodRef:
		return e
	case *ast.FieldAccess:
		if e.Receiver != nil {
			if access, ok := c.qualifiedClass(ctx, e); ok {
				return access
			}
			e.Receiver = c.resolveReceiver(ctx, e.Receiver)
			return e
		}
		if e.Member != nil || e.Type() != nil {
			return e
		}
		return c.resolveName(ctx, e.Range, e.Name)
	case *ast.ClassAccess:
		if e.Class == nil && e.Type() == nil {
			e.Class = ctx.ResolveClass(e.Name)
			if e.Class == nil {
				c.report(diag.NewUnresolvedType{Range: e.Range, Name: e.Name})
				e.SetType(types.Unknown)
			}
		}
		return e
	case *ast.MethodCall:
		return c.resolveCall(ctx, e)
	case *ast.ConstructorCall:
		resolve.Type(ctx, e.Class, c.sink)
		c.resolveArgs(ctx, e.Args)
		return e
	case *ast.This:
		if e.Class == nil {
			e.Class = ctx.ThisClass()
		}
		return e
	case *ast.Assignment:
		fresh := !resolvedAccess(e.Target)
		e.Target = c.resolveExpr(ctx, e.Target)
		e.Value = c.resolveExpr(ctx, e.Value)
		if access, ok := e.Target.(*ast.FieldAccess); ok && fresh {
			if v, ok := access.Member.(*types.Variable); ok {
				v.Assignments++
			}
		}
		return e
	case *ast.Lambda:
		c.resolveLambda(ctx, e)
		return e
	case *ast.Block:
		c.resolveBlock(ctx, e)
		return e
	case *ast.If:
		e.Cond = c.resolveExpr(ctx, e.Cond)
		e.Then = c.resolveExpr(ctx, e.Then)
		e.Else = c.resolveExpr(ctx, e.Else)
		return e
	case *ast.Match:
		e.Subject = c.resolveExpr(ctx, e.Subject)
		for _, cs := range e.Cases {
			caseCtx := c.resolvePattern(ctx, cs.Pattern)
			cs.Guard = c.resolveExpr(caseCtx, cs.Guard)
			cs.Body = c.resolveExpr(caseCtx, cs.Body)
		}
		return e
	case *ast.Cast:
		e.Value = c.resolveExpr(ctx, e.Value)
		resolve.Type(ctx, e.Target, c.sink)
		return e
	case *ast.Conversion:
		e.Value = c.resolveExpr(ctx, e.Value)
		return e
	default:
		diag.Fail("resolve: unexpected expression %T", e)
		return nil
	}
}

// resolvedAccess reports whether e is an access whose member was already
// bound by an earlier run
func resolvedAccess(e ast.Expr) bool {
	access, ok := e.(*ast.FieldAccess)
	return ok && access.Member != nil
}

// resolveName rewrites a bare name into the access of the data member or the
// class it names
func (c *Checker) resolveName(ctx scope.Context, at ast.Range, name string) ast.Expr {
	if member := ctx.ResolveField(name); member != nil {
		access := &ast.FieldAccess{Name: name, Member: member}
		access.Range = at
		return access
	}
	if class := ctx.ResolveClass(name); class != nil {
		return classAccess(at, name, class)
	}
	c.report(diag.NewUnresolvedName{Range: at, Name: name})
	access := &ast.FieldAccess{Name: name}
	access.Range = at
	access.SetType(types.Unknown)
	return access
}

func classAccess(at ast.Range, name string, class *types.Class) *ast.ClassAccess {
	access := &ast.ClassAccess{Name: name, Class: class}
	access.Range = at
	return access
}

// qualifiedName returns the dotted name spelt by a chain of bare names, such
// as kiln.lang.List
func qualifiedName(e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.MethodCall:
		if e.Applied || len(e.TypeArgs) > 0 {
			return "", false
		}
		if e.Receiver == nil {
			return e.Name, true
		}
		prefix, ok := qualifiedName(e.Receiver)
		if !ok {
			return "", false
		}
		return prefix + "." + e.Name, true
	case *ast.FieldAccess:
		if e.Member != nil {
			return "", false
		}
		if e.Receiver == nil {
			return e.Name, true
		}
		prefix, ok := qualifiedName(e.Receiver)
		if !ok {
			return "", false
		}
		return prefix + "." + e.Name, true
	default:
		return "", false
	}
}

// qualifiedClass resolves e as a qualified class name when the first name of
// the chain is not a variable, field or class in scope
func (c *Checker) qualifiedClass(ctx scope.Context, e ast.Expr) (*ast.ClassAccess, bool) {
	name, ok := qualifiedName(e)
	if !ok || !strings.Contains(name, ".") {
		return nil, false
	}
	root, _, _ := strings.Cut(name, ".")
	if ctx.ResolveField(root) != nil || ctx.ResolveClass(root) != nil {
		return nil, false
	}
	class := ctx.ResolveClass(name)
	if class == nil {
		return nil, false
	}
	return classAccess(ast.RangeOf(e), name, class), true
}

func (c *Checker) resolveReceiver(ctx scope.Context, e ast.Expr) ast.Expr {
	if access, ok := c.qualifiedClass(ctx, e); ok {
		return access
	}
	return c.resolveExpr(ctx, e)
}

func (c *Checker) resolveArgs(ctx scope.Context, args []*ast.Argument) {
	for _, arg := range args {
		arg.Value = c.resolveExpr(ctx, arg.Value)
	}
}

func (c *Checker) resolveCall(ctx scope.Context, call *ast.MethodCall) ast.Expr {
	if !call.Applied {
		if call.Receiver == nil {
			return c.resolveName(ctx, call.Range, call.Name)
		}
		if access, ok := c.qualifiedClass(ctx, call); ok {
			return access
		}
		access := &ast.FieldAccess{Receiver: c.resolveReceiver(ctx, call.Receiver), Name: call.Name}
		access.Range = call.Range
		return access
	}

	if call.Receiver != nil {
		call.Receiver = c.resolveReceiver(ctx, call.Receiver)
	}
	for _, ref := range call.TypeArgs {
		resolve.Type(ctx, ref, c.sink)
	}
	c.resolveArgs(ctx, call.Args)
	if call.Receiver != nil || call.Invoke || call.Method != nil || resolve.HasMethod(ctx, nil, call.Name) {
		return call
	}

	if class := ctx.ResolveClass(call.Name); class != nil {
		ref := ast.Named(call.Name, call.TypeArgs...)
		ref.Range = call.Range
		ctor := &ast.ConstructorCall{Class: ref, Args: call.Args}
		ctor.Range = call.Range
		resolve.Type(ctx, ref, c.sink)
		return ctor
	}
	if member := ctx.ResolveField(call.Name); member != nil {
		value := &ast.FieldAccess{Name: call.Name, Member: member}
		value.Range = call.Range
		call.Receiver = value
		call.Name = ""
		call.Invoke = true
	}
	return call
}

func (c *Checker) resolveLambda(ctx scope.Context, l *ast.Lambda) {
	if l.Captures == nil {
		l.Captures = capture.NewTable()
	}
	params := make([]*types.Variable, len(l.Params))
	for i, p := range l.Params {
		if p.Variable == nil {
			var t types.Type
			if p.Type != nil {
				t = resolve.Type(ctx, p.Type, c.sink)
			}
			p.Variable = &types.Variable{Name: p.Name, Type: t, Kind: types.VarParameter, Final: true, Index: i, Pos: p.Pos()}
		}
		params[i] = p.Variable
	}
	l.Body = c.resolveExpr(scope.NewLambda(ctx, params, l.Captures, nil), l.Body)
}

func (c *Checker) resolveBlock(ctx scope.Context, b *ast.Block) {
	if b == nil {
		return
	}
	block := scope.NewBlock(ctx)
	for _, stmt := range b.Stmts {
		switch stmt := stmt.(type) {
		case *ast.VarDecl:
			stmt.Init = c.resolveExpr(block, stmt.Init)
			if stmt.Variable == nil {
				if _, dup := block.Declared(stmt.Name); dup {
					c.report(diag.NewRedeclared{Range: stmt.Range, Name: stmt.Name})
				}
				var t types.Type
				if stmt.Type != nil {
					t = resolve.Type(block, stmt.Type, c.sink)
				}
				stmt.Variable = &types.Variable{Name: stmt.Name, Type: t, Kind: types.VarLocal, Final: stmt.Final, Pos: stmt.Pos()}
			}
			block = block.With(stmt.Variable)
		case *ast.ExprStmt:
			stmt.Expr = c.resolveExpr(block, stmt.Expr)
		case *ast.Return:
			stmt.Value = c.resolveExpr(block, stmt.Value)
		default:
			diag.Fail("resolve: unexpected statement %T", stmt)
		}
	}
}

// resolvePattern declares the binding of p, if any, and returns the context
// the guard and body of its case see
func (c *Checker) resolvePattern(ctx scope.Context, p ast.Pattern) scope.Context {
	switch p := p.(type) {
	case nil, *ast.WildcardPattern, *ast.LiteralPattern:
		return ctx
	case *ast.TypePattern:
		resolve.Type(ctx, p.Type, c.sink)
		return ctx
	case *ast.BindingPattern:
		if p.Variable == nil {
			var t types.Type
			if p.Type != nil {
				t = resolve.Type(ctx, p.Type, c.sink)
			}
			p.Variable = &types.Variable{Name: p.Name, Type: t, Kind: types.VarPattern, Final: true, Pos: p.Pos()}
		}
		return scope.Combine(scope.NewBindings(p.Variable), ctx)
	default:
		diag.Fail("resolve: unexpected pattern %T", p)
		return nil
	}
}
