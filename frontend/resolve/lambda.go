package resolve

import (
	"github.com/cottand/kiln/frontend/types"
)

// Signature is the functional method of a SAM type together with its
// parameter and return types as seen through that type. Type parameters the
// SAM type leaves open, like R in Function1<Int, R>, are kept.
type Signature struct {
	Method *types.Method
	Params []types.Type
	Return types.Type
}

// Functional returns the signature a lambda must have to be used as a value
// of type t. ok is false if t is not a SAM interface.
func Functional(t types.Type) (sig Signature, ok bool) {
	c := types.ClassOf(t)
	if c == nil {
		return Signature{}, false
	}
	m := c.FunctionalMethod()
	if m == nil {
		return Signature{}, false
	}
	view, found := types.AsSuperType(t, m.Owner)
	if !found {
		view = t
	}
	ctx := types.ContextOf(view)
	sig = Signature{Method: m, Params: make([]types.Type, len(m.Params))}
	for i, p := range m.Params {
		sig.Params[i], _ = types.Substitute(p.Type, ctx)
	}
	sig.Return, _ = types.Substitute(m.ReturnType(), ctx)
	return sig, true
}

// Arity is the number of parameters of the functional method of t, -1 if t
// is not a SAM interface
func Arity(t types.Type) int {
	sig, ok := Functional(t)
	if !ok {
		return -1
	}
	return len(sig.Params)
}

// LambdaTarget is the functional type a lambda is checked against, within the
// context of the call the lambda is an argument of
type LambdaTarget struct {
	Signature
	// Context is the context of the enclosing call, which InferLambdaTarget
	// and Narrow extend
	Context   *types.TypeContext
	inferable []*types.TypeParameter
}

// InferLambdaTarget prepares a lambda to be checked against target, the
// declared type of the parameter it is passed to. The types of the lambda
// parameters are taken positionally from the functional method of target,
// with ctx substituted; type parameters ctx does not map yet fall back to
// their default type. inferable are the type parameters the lambda body may
// still bind, through Narrow.
func InferLambdaTarget(target types.Type, ctx *types.TypeContext, inferable []*types.TypeParameter) (*LambdaTarget, bool) {
	if ctx == nil {
		ctx = types.NewTypeContext()
	}
	substituted, _ := types.Substitute(target, ctx)
	sig, ok := Functional(substituted)
	if !ok {
		return nil, false
	}
	for i, p := range sig.Params {
		sig.Params[i] = types.SubstituteOrDefault(p, ctx)
	}
	return &LambdaTarget{Signature: sig, Context: ctx, inferable: inferable}, true
}

// ExpectedReturn is the type the lambda body must have, nil while it still
// mentions type parameters the body is meant to bind
func (t *LambdaTarget) ExpectedReturn() types.Type {
	ret, ok := types.Substitute(t.Return, t.Context)
	if !ok {
		return nil
	}
	return ret
}

// Narrow binds the type parameters of the return type that are still unbound
// from body, the type of the lambda body. Bound parameters are never revisited.
func (t *LambdaTarget) Narrow(body types.Type) {
	types.Infer(t.Return, body, types.Unbound(t.inferable, t.Context), t.Context)
}

// ReturnType is the return type of the functional method once narrowed
func (t *LambdaTarget) ReturnType() types.Type {
	return types.SubstituteOrDefault(t.Return, t.Context)
}
