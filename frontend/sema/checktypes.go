package sema

import (
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/capture"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/resolve"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
)

// CheckTypes gives every expression its type, resolves calls and member
// accesses on typed receivers, inserts implicit conversions, converts lambdas
// to the functional interface they are expected as and fills their capture
// tables.
//
// Fields declared without a type take the type of their initializer; field
// initializers are checked before any method body so that the bodies see it.
func (c *Checker) CheckTypes() {
	c.walkBodies(bodies{
		field: func(ctx scope.Context, decl *ast.FieldDecl) {
			decl.Init = c.checkExpr(ctx, decl.Init, decl.Field.Type)
			if decl.Field.Type == nil {
				decl.Field.Type = ast.TypeOf(decl.Init)
			}
		},
		method: func(ctx scope.Context, decl *ast.MethodDecl) {
			c.checkBody(ctx, decl.Body, decl.Method.ReturnType())
		},
		constructor: func(ctx scope.Context, _ *ast.ClassDecl, decl *ast.ConstructorDecl) {
			c.checkBody(ctx, decl.Body, types.Void)
		},
	})
	c.logger.Debug("checked types", "diagnostics", c.sink.Len())
}

// checkBody checks the body of a method returning ret. A body producing a
// value ends in a return or in an expression, which is the returned value.
func (c *Checker) checkBody(ctx scope.Context, body *ast.Block, ret types.Type) {
	if body == nil || body.Type() != nil {
		return
	}
	if ret == types.Void {
		c.checkBlock(ctx, body, nil)
		return
	}
	c.checkBlock(ctx, body, ret)
	if len(body.Stmts) == 0 {
		c.report(diag.NewInvalidReturn{Range: body.Range, Reason: "missing return value of type " + ret.TypeName()})
		return
	}
	switch body.Stmts[len(body.Stmts)-1].(type) {
	case *ast.Return, *ast.ExprStmt:
	default:
		c.report(diag.NewInvalidReturn{Range: body.Range, Reason: "missing return value of type " + ret.TypeName()})
	}
}

// checkExpr types e, which is expected to be usable as expected when that is
// not nil, and returns the node replacing e. Nodes typed by an earlier run
// are returned as they are.
func (c *Checker) checkExpr(ctx scope.Context, e ast.Expr, expected types.Type) ast.Expr {
	if e == nil || e.Type() != nil {
		return e
	}
	switch e := e.(type) {
	case *ast.Block:
		c.checkBlock(ctx, e, expected)
		return e
	case *ast.If:
		c.checkIf(ctx, e, expected)
		if e.Else == nil {
			return c.coerce(e, expected)
		}
		return e
	case *ast.Match:
		c.checkMatch(ctx, e, expected)
		return e
	}
	return c.coerce(c.typeExpr(ctx, e, expected), expected)
}

// coerce makes e usable where expected is expected, through an implicit
// conversion if needed
func (c *Checker) coerce(e ast.Expr, expected types.Type) ast.Expr {
	if expected == nil || expected == types.Void {
		return e
	}
	t := ast.TypeOf(e)
	if types.IsSuperType(expected, t) {
		return e
	}
	if conv := types.FindConversion(t, expected); conv != nil {
		return convert(e, conv)
	}
	c.report(diag.NewTypeMismatch{Range: ast.RangeOf(e), Expected: expected, Found: t})
	return e
}

func convert(e ast.Expr, conv *types.Method) *ast.Conversion {
	n := &ast.Conversion{Value: e, Method: conv}
	n.Range = ast.RangeOf(e)
	n.SetType(conv.ReturnType())
	return n
}

func (c *Checker) typeExpr(ctx scope.Context, e ast.Expr, expected types.Type) ast.Expr {
	switch e := e.(type) {
	case *ast.Literal:
		e.SetType(c.literalType(e))
	case *ast.FieldAccess:
		c.checkAccess(ctx, e)
	case *ast.ClassAccess:
		if e.Class == nil {
			e.SetType(types.Unknown)
		} else {
			e.SetType(&types.ClassType{Class: e.Class})
		}
	case *ast.MethodCall:
		c.checkCall(ctx, e, expected)
	case *ast.ConstructorCall:
		c.checkConstructorCall(ctx, e, expected)
	case *ast.This:
		c.checkThis(ctx, e)
	case *ast.Assignment:
		c.checkAssignment(ctx, e)
	case *ast.Lambda:
		c.checkLambda(ctx, e, expected)
	case *ast.Cast:
		c.checkCast(ctx, e)
	case *ast.Conversion:
		e.Value = c.checkExpr(ctx, e.Value, nil)
		e.SetType(e.Method.ReturnType())
	case *ast.MethodRef:
		diag.Fail("method reference without a type at %v", e.Range)
	default:
		diag.Fail("checkTypes: unexpected expression %T", e)
	}
	return e
}

func (c *Checker) checkBlock(ctx scope.Context, b *ast.Block, expected types.Type) {
	block := scope.NewBlock(ctx)
	last := len(b.Stmts) - 1
	for i, stmt := range b.Stmts {
		switch stmt := stmt.(type) {
		case *ast.VarDecl:
			c.checkVarDecl(block, stmt)
			block = block.With(stmt.Variable)
		case *ast.ExprStmt:
			var want types.Type
			if i == last {
				want = expected
			}
			stmt.Expr = c.checkExpr(block, stmt.Expr, want)
		case *ast.Return:
			c.checkReturn(block, stmt)
		default:
			diag.Fail("checkTypes: unexpected statement %T", stmt)
		}
	}
	if last := b.Last(); last != nil {
		b.SetType(ast.TypeOf(last))
	} else {
		b.SetType(types.Void)
	}
}

func (c *Checker) checkVarDecl(ctx scope.Context, decl *ast.VarDecl) {
	v := decl.Variable
	decl.Init = c.checkExpr(ctx, decl.Init, v.Type)
	if v.Type != nil {
		return
	}
	switch {
	case decl.Init == nil:
		c.report(diag.NewMissingType{Range: decl.Range, Name: decl.Name})
		v.Type = types.Unknown
	case ast.TypeOf(decl.Init) == types.Void:
		c.report(diag.NewTypeMismatch{Range: ast.RangeOf(decl.Init), Expected: c.builtins.Type(c.builtins.Any), Found: types.Void})
		v.Type = types.Unknown
	default:
		v.Type = ast.TypeOf(decl.Init)
	}
}

func (c *Checker) checkReturn(ctx scope.Context, r *ast.Return) {
	ret := ctx.ReturnType()
	switch {
	case r.Value == nil:
		if ret != nil && ret != types.Void {
			c.report(diag.NewInvalidReturn{Range: r.Range, Reason: "missing return value of type " + ret.TypeName()})
		}
	case ret == types.Void:
		r.Value = c.checkExpr(ctx, r.Value, nil)
		c.report(diag.NewInvalidReturn{Range: r.Range, Reason: "cannot return a value here"})
	default:
		r.Value = c.checkExpr(ctx, r.Value, ret)
	}
}

func (c *Checker) checkIf(ctx scope.Context, e *ast.If, expected types.Type) {
	e.Cond = c.checkExpr(ctx, e.Cond, c.builtins.Type(c.builtins.Boolean))
	if e.Else == nil {
		e.Then = c.checkExpr(ctx, e.Then, nil)
		e.SetType(types.Void)
		return
	}
	e.Then = c.checkExpr(ctx, e.Then, expected)
	e.Else = c.checkExpr(ctx, e.Else, expected)
	e.SetType(c.join(expected, ast.TypeOf(e.Then), ast.TypeOf(e.Else)))
}

func (c *Checker) checkMatch(ctx scope.Context, e *ast.Match, expected types.Type) {
	e.Subject = c.checkExpr(ctx, e.Subject, nil)
	subject := ast.TypeOf(e.Subject)
	var branches []types.Type
	for _, cs := range e.Cases {
		caseCtx := c.checkPattern(ctx, cs.Pattern, subject)
		cs.Guard = c.checkExpr(caseCtx, cs.Guard, c.builtins.Type(c.builtins.Boolean))
		cs.Body = c.checkExpr(caseCtx, cs.Body, expected)
		branches = append(branches, ast.TypeOf(cs.Body))
	}
	if len(branches) == 0 {
		e.SetType(types.Void)
		return
	}
	e.SetType(c.join(expected, branches...))
}

// join is the type of a conditional whose branches have the given types
func (c *Checker) join(expected types.Type, branches ...types.Type) types.Type {
	t := branches[0]
	for _, branch := range branches[1:] {
		t = types.LeastUpperBound(t, branch)
	}
	if types.IsUnknown(t) && expected != nil {
		return expected
	}
	return t
}

// checkPattern mirrors resolvePattern: the binding of a case is only seen by
// its guard and body
func (c *Checker) checkPattern(ctx scope.Context, p ast.Pattern, subject types.Type) scope.Context {
	switch p := p.(type) {
	case nil, *ast.WildcardPattern:
		return ctx
	case *ast.LiteralPattern:
		if p.Value != nil && p.Value.Type() == nil {
			p.Value.SetType(c.literalType(p.Value))
		}
		return ctx
	case *ast.TypePattern:
		c.checkCastable(p, subject, ast.ResolvedOr(p.Type, types.Unknown))
		return ctx
	case *ast.BindingPattern:
		if p.Variable.Type == nil {
			p.Variable.Type = subject
		} else {
			c.checkCastable(p, subject, p.Variable.Type)
		}
		return scope.Combine(scope.NewBindings(p.Variable), ctx)
	default:
		diag.Fail("checkTypes: unexpected pattern %T", p)
		return nil
	}
}

func (c *Checker) checkCast(ctx scope.Context, e *ast.Cast) {
	e.Value = c.checkExpr(ctx, e.Value, nil)
	to := ast.ResolvedOr(e.Target, types.Unknown)
	c.checkCastable(e, ast.TypeOf(e.Value), to)
	e.SetType(to)
}

// checkCastable reports casts between two unrelated classes, which no value
// can satisfy. Interfaces may always be implemented by some subclass.
func (c *Checker) checkCastable(at ast.Positioner, from, to types.Type) {
	fromClass, toClass := types.ClassOf(from), types.ClassOf(to)
	if fromClass == nil || toClass == nil || fromClass.IsInterface() || toClass.IsInterface() {
		return
	}
	if !fromClass.IsSubclassOf(toClass) && !toClass.IsSubclassOf(fromClass) {
		c.report(diag.NewInvalidCast{Range: ast.RangeOf(at), From: from, To: to})
	}
}

func (c *Checker) checkThis(ctx scope.Context, e *ast.This) {
	if ctx.IsStatic() || ctx.ThisClass() == nil {
		c.report(diag.NewStaticContext{Range: e.Range, Subject: "this"})
		e.SetType(types.Unknown)
		return
	}
	e.Class = ctx.ThisClass()
	if captured, ok := ctx.CaptureThis(); ok {
		if slot, isSlot := captured.(*capture.Slot); isSlot {
			e.Capture = slot
		}
	}
	e.SetType(e.Class.ThisType())
}

func (c *Checker) checkAssignment(ctx scope.Context, e *ast.Assignment) {
	e.Target = c.checkExpr(ctx, e.Target, nil)
	e.SetType(types.Void)
	access, ok := e.Target.(*ast.FieldAccess)
	if !ok {
		c.report(diag.NewInvalidAssignment{Range: ast.RangeOf(e.Target)})
		e.Value = c.checkExpr(ctx, e.Value, nil)
		return
	}
	e.Value = c.checkExpr(ctx, e.Value, ast.TypeOf(access))
}

// checkAccess types a read of a data member. Bare names were bound by
// resolve; members of a receiver are looked up on its type here.
func (c *Checker) checkAccess(ctx scope.Context, e *ast.FieldAccess) {
	if e.Receiver == nil {
		if e.Member == nil {
			e.SetType(types.Unknown)
			return
		}
		c.captureMember(ctx, e)
		e.SetType(orUnknown(resolve.MemberType(e.Member, scope.ThisType(ctx))))
		return
	}

	e.Receiver = c.checkExpr(ctx, e.Receiver, nil)
	if class, ok := e.Receiver.(*ast.ClassAccess); ok {
		if class.Class == nil {
			e.SetType(types.Unknown)
			return
		}
		f := resolve.StaticField(class.Class, e.Name)
		if f == nil {
			c.report(diag.NewUnresolvedName{Range: e.Range, Name: class.Class.Name + "." + e.Name})
			e.SetType(types.Unknown)
			return
		}
		e.Member = f
		e.SetType(orUnknown(f.Type))
		return
	}

	receiver := ast.TypeOf(e.Receiver)
	if types.IsUnknown(receiver) {
		e.SetType(types.Unknown)
		return
	}
	f, t := resolve.Field(receiver, e.Name)
	if f == nil {
		c.report(diag.NewUnresolvedName{Range: e.Range, Name: receiver.TypeName() + "." + e.Name})
		e.SetType(types.Unknown)
		return
	}
	e.Member = f
	e.SetType(orUnknown(t))
}

// captureMember routes a read of a local binding, or of an instance field
// through the implicit this, through the capture tables of the lambdas
// between the read and the declaration
func (c *Checker) captureMember(ctx scope.Context, e *ast.FieldAccess) {
	switch m := e.Member.(type) {
	case *types.Variable:
		captured, ok := ctx.Capture(m)
		if !ok {
			diag.Fail("capture of '%s', which no enclosing scope declares", m.Name)
		}
		slot, isSlot := captured.(*capture.Slot)
		if !isSlot {
			return
		}
		e.Capture = slot
		if !m.EffectivelyFinal() {
			c.report(diag.NewCaptureNotFinal{Range: e.Range, Name: m.Name})
		}
	case *types.Field:
		if m.IsStatic() {
			return
		}
		if ctx.IsStatic() {
			c.report(diag.NewStaticContext{Range: e.Range, Subject: m.Name})
			return
		}
		if captured, ok := ctx.CaptureThis(); ok {
			if slot, isSlot := captured.(*capture.Slot); isSlot {
				e.Capture = slot
			}
		}
	}
}

func orUnknown(t types.Type) types.Type {
	if t == nil {
		return types.Unknown
	}
	return t
}
