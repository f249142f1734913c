package sema

import (
	"strconv"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/capture"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/resolve"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
)

// callSite is what checkCall and checkConstructorCall share: the arguments of
// a call as overload resolution sees them
type callSite struct {
	at   ast.Range
	args []*ast.Argument
	// typed are the arguments passed to overload resolution
	typed match.Arguments
	// incomplete is set when an argument failed to type, in which case
	// failing to find a candidate is not reported again
	incomplete bool
}

// checkArgs types the arguments of a call, except lambdas without parameter
// types, which can only be typed once the callee is known
func (c *Checker) checkArgs(ctx scope.Context, at ast.Range, args []*ast.Argument) *callSite {
	site := &callSite{at: at, args: args, typed: make(match.Arguments, len(args))}
	for i, arg := range args {
		if l, ok := arg.Value.(*ast.Lambda); ok && l.Type() == nil && l.Implicit() {
			site.typed[i] = match.ImplicitLambda(arg.Label, len(l.Params))
			continue
		}
		arg.Value = c.checkExpr(ctx, arg.Value, nil)
		t := ast.TypeOf(arg.Value)
		site.incomplete = site.incomplete || types.ContainsUnknown(t)
		site.typed[i] = match.Labeled(arg.Label, t)
	}
	return site
}

// abandon types what is left of a call no candidate was found for, so that
// the lambdas in its arguments are still checked
func (c *Checker) abandon(ctx scope.Context, site *callSite) {
	for i, arg := range site.args {
		if !site.typed[i].IsImplicitLambda() {
			continue
		}
		l := arg.Value.(*ast.Lambda)
		for _, p := range l.Params {
			if p.Variable.Type == nil {
				p.Variable.Type = types.Unknown
			}
		}
		l.Body = c.checkExpr(scope.NewLambda(ctx, paramVariables(l.Params), l.Captures, nil), l.Body, nil)
		l.SetType(types.Unknown)
	}
}

// apply finishes a call once its candidate is chosen: conversions are
// inserted, lambda arguments are converted to their parameter type, which
// may bind more type parameters, and the result of the call is inferred from
// the type it is expected as
func (c *Checker) apply(ctx scope.Context, site *callSite, best *match.Candidate, inferable []*types.TypeParameter, expected types.Type) {
	for i, arg := range site.args {
		if site.typed[i].IsImplicitLambda() {
			l := arg.Value.(*ast.Lambda)
			declared := best.ParamFor(i).Type
			target, ok := resolve.InferLambdaTarget(declared, best.Context, inferable)
			if !ok {
				diag.Fail("lambda argument scored against '%s', which is not functional", declared.TypeName())
			}
			c.checkLambdaTarget(ctx, l, target, declared)
			continue
		}
		if conv := best.Conversions[i]; conv != nil {
			arg.Value = convert(arg.Value, conv)
		}
	}
	if expected != nil && expected != types.Void {
		types.Infer(best.Member.ReturnType(), expected, types.Unbound(inferable, best.Context), best.Context)
	}
}

// checkInferred reports the type parameters of callable no source bound, and
// the inferred arguments that violate their bounds
func (c *Checker) checkInferred(site *callSite, callable string, params []*types.TypeParameter, ctx *types.TypeContext) {
	if missing := ctx.Missing(params); len(missing) > 0 {
		if site.incomplete {
			return
		}
		names := make([]string, len(missing))
		for i, p := range missing {
			names[i] = p.Name
		}
		c.report(diag.NewInferenceIncomplete{Range: site.at, Callable: callable, Params: names})
		return
	}
	args := make([]types.Type, len(params))
	at := make([]ast.Positioner, len(params))
	for i, p := range params {
		args[i], _ = ctx.Get(p)
		at[i] = site.at
	}
	resolve.CheckBounds(params, args, at, c.sink)
}

func (c *Checker) reportUnresolvedCall(site *callSite, set *match.CandidateSet) {
	if site.incomplete {
		return
	}
	if _, outcome := set.Best(); outcome == match.Ambiguous {
		c.report(diag.NewAmbiguousCall{
			Range:      site.at,
			Receiver:   set.Receiver,
			Name:       set.Name,
			Args:       set.Args.Types(),
			Candidates: match.Describe(set.Maximal()),
		})
		return
	}
	c.report(diag.NewMethodNotFound{
		Range:      site.at,
		Receiver:   set.Receiver,
		Name:       set.Name,
		Args:       set.Args.Types(),
		Candidates: match.Describe(set.All()),
	})
}

func (c *Checker) checkCall(ctx scope.Context, call *ast.MethodCall, expected types.Type) {
	var receiver types.Type
	var static *types.Class
	if call.Receiver != nil {
		call.Receiver = c.checkExpr(ctx, call.Receiver, nil)
		if class, ok := call.Receiver.(*ast.ClassAccess); ok {
			static = class.Class
		} else {
			receiver = ast.TypeOf(call.Receiver)
		}
		if static == nil && types.IsUnknown(receiver) {
			c.abandon(ctx, c.checkArgs(ctx, call.Range, call.Args))
			call.SetType(types.Unknown)
			return
		}
	}
	if static == nil && receiver != nil && !call.Invoke {
		c.invokeFieldOf(ctx, call, receiver)
		receiver = ast.TypeOf(call.Receiver)
	}
	if call.Invoke {
		sig, ok := resolve.Functional(receiver)
		if !ok {
			if !types.IsUnknown(receiver) {
				c.report(diag.NewMethodNotFound{Range: call.Range, Receiver: receiver, Name: "invoke"})
			}
			c.abandon(ctx, c.checkArgs(ctx, call.Range, call.Args))
			call.SetType(types.Unknown)
			return
		}
		call.Name = sig.Method.Name
	}

	site := c.checkArgs(ctx, call.Range, call.Args)
	typeArgs := make([]types.Type, len(call.TypeArgs))
	for i, ref := range call.TypeArgs {
		typeArgs[i] = ast.ResolvedOr(ref, types.Unknown)
	}
	req := match.Request{Name: call.Name, Receiver: receiver, Args: site.typed, TypeArgs: typeArgs, Policy: c.policy}

	var best *match.Candidate
	var set *match.CandidateSet
	if static != nil {
		best, set = resolve.StaticMethod(static, req)
	} else {
		best, set = resolve.Method(ctx, req)
	}
	if best == nil {
		c.reportUnresolvedCall(site, set)
		c.abandon(ctx, site)
		call.SetType(types.Unknown)
		return
	}

	m := best.Member.(*types.Method)
	call.Method = m
	call.Inferred = best.Context
	c.apply(ctx, site, best, m.TypeParams, expected)
	if len(typeArgs) > 0 {
		at := make([]ast.Positioner, len(call.TypeArgs))
		for i, ref := range call.TypeArgs {
			at[i] = ref
		}
		resolve.CheckBounds(m.TypeParams, typeArgs, at, c.sink)
	} else {
		c.checkInferred(site, m.Name, m.TypeParams, best.Context)
	}

	if call.Receiver == nil && !m.IsStatic() {
		call.ImplicitThis = true
		if ctx.IsStatic() {
			c.report(diag.NewStaticContext{Range: call.Range, Subject: m.Name})
		} else if captured, ok := ctx.CaptureThis(); ok {
			if slot, isSlot := captured.(*capture.Slot); isSlot {
				call.Capture = slot
			}
		}
	}
	call.SetType(types.SubstituteOrDefault(m.ReturnType(), best.Context))
}

// invokeFieldOf rewrites recv.f(args), where recv has no method f but a
// field f of a functional type, into a call of the functional method of the
// field's value
func (c *Checker) invokeFieldOf(ctx scope.Context, call *ast.MethodCall, receiver types.Type) {
	if resolve.HasMethod(ctx, receiver, call.Name) {
		return
	}
	f, t := resolve.Field(receiver, call.Name)
	if f == nil {
		return
	}
	if _, ok := resolve.Functional(t); !ok {
		return
	}
	value := &ast.FieldAccess{Receiver: call.Receiver, Name: call.Name, Member: f}
	value.Range = call.Range
	value.SetType(t)
	call.Receiver = value
	call.Invoke = true
}

func (c *Checker) checkConstructorCall(ctx scope.Context, call *ast.ConstructorCall, expected types.Type) {
	classType := ast.ResolvedOr(call.Class, types.Unknown)
	class := types.ClassOf(classType)
	if class == nil || types.IsUnknown(classType) {
		c.abandon(ctx, c.checkArgs(ctx, call.Range, call.Args))
		call.SetType(types.Unknown)
		return
	}
	site := c.checkArgs(ctx, call.Range, call.Args)
	if class.IsInterface() {
		c.report(diag.NewAbstractInstantiation{Range: call.Range, Class: class})
		c.abandon(ctx, site)
		call.SetType(classType)
		return
	}
	req := match.Request{Name: class.Name, Args: site.typed, Policy: c.policy}
	explicit := false
	if generic, ok := classType.(*types.GenericType); ok {
		req.TypeArgs = generic.Args
		explicit = true
	}

	best, set := resolve.Constructor(ctx, class, req)
	if best == nil {
		if !site.incomplete {
			if _, outcome := set.Best(); outcome == match.Ambiguous {
				c.report(diag.NewAmbiguousCall{Range: call.Range, Name: class.Name, Args: req.Args.Types(), Candidates: match.Describe(set.Maximal())})
			} else {
				c.report(diag.NewConstructorNotFound{Range: call.Range, Class: classType, Args: req.Args.Types(), Candidates: match.Describe(set.All())})
			}
		}
		c.abandon(ctx, site)
		call.SetType(types.Unknown)
		return
	}

	ctor := best.Member.(*types.Constructor)
	call.Constructor = ctor
	call.Inferred = best.Context
	c.apply(ctx, site, best, class.TypeParams, expected)
	if !explicit {
		c.checkInferred(site, class.Name, class.TypeParams, best.Context)
	}
	call.SetType(types.SubstituteOrDefault(class.ThisType(), best.Context))
}

// checkLambda types a lambda that is not an argument of a call: converted to
// expected when that is a functional interface, or else typed as the
// FunctionN of its written parameter types
func (c *Checker) checkLambda(ctx scope.Context, l *ast.Lambda, expected types.Type) {
	if expected != nil {
		if target, ok := resolve.InferLambdaTarget(expected, nil, nil); ok && len(target.Params) == len(l.Params) {
			c.checkLambdaTarget(ctx, l, target, expected)
			return
		}
	}
	params := paramVariables(l.Params)
	if l.Implicit() {
		c.report(diag.NewUntypedLambda{Range: l.Range})
		for _, v := range params {
			if v.Type == nil {
				v.Type = types.Unknown
			}
		}
		l.Body = c.checkExpr(scope.NewLambda(ctx, params, l.Captures, nil), l.Body, nil)
		l.SetType(types.Unknown)
		return
	}

	paramTypes := make([]types.Type, len(params))
	for i, v := range params {
		paramTypes[i] = v.MemberType()
	}
	l.Body = c.checkExpr(scope.NewLambda(ctx, params, l.Captures, nil), l.Body, nil)
	fn, ok := c.builtins.FunctionType(paramTypes, ast.TypeOf(l.Body))
	if !ok {
		c.report(diag.NewUnresolvedType{Range: l.Range, Name: "Function" + strconv.Itoa(len(paramTypes))})
		l.SetType(types.Unknown)
		return
	}
	l.SAM = types.ClassOf(fn).FunctionalMethod()
	l.SetType(fn)
}

// checkLambdaTarget converts l to the functional type declared, seen through
// target. Parameters without a type take the type of the functional method's
// parameter; the body binds what the return type leaves open.
func (c *Checker) checkLambdaTarget(ctx scope.Context, l *ast.Lambda, target *resolve.LambdaTarget, declared types.Type) {
	params := paramVariables(l.Params)
	for i, v := range params {
		switch {
		case i >= len(target.Params):
		case v.Type == nil:
			v.Type = target.Params[i]
		case !types.IsSuperType(v.Type, target.Params[i]):
			c.report(diag.NewTypeMismatch{Range: l.Params[i].Range, Expected: target.Params[i], Found: v.Type})
		}
	}
	ret := target.ExpectedReturn()
	bodyCtx := scope.NewLambda(ctx, params, l.Captures, ret)
	if ret == types.Void {
		l.Body = c.checkExpr(bodyCtx, l.Body, nil)
	} else {
		l.Body = c.checkExpr(bodyCtx, l.Body, ret)
		target.Narrow(ast.TypeOf(l.Body))
	}
	l.SAM = target.Method
	l.SetType(types.SubstituteOrDefault(declared, target.Context))
}
