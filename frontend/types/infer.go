package types

// Infer extends ctx so that param (which may mention type parameters) accepts
// arg. Only parameters for which inferable answers true are bound, and only
// when ctx does not map them yet: an already bound slot is never revisited.
//
// This is directed substitution rather than unification: arg is taken as a
// given and only param is decomposed.
func Infer(param, arg Type, inferable func(*TypeParameter) bool, ctx *TypeContext) {
	if IsUnknown(arg) || arg == Null || arg == Void {
		return
	}
	switch param := param.(type) {
	case *TypeVar:
		if !inferable(param.Param) {
			return
		}
		if _, bound := ctx.Get(param.Param); bound {
			return
		}
		ctx.Set(param.Param, arg)
	case *GenericType:
		asParam, ok := AsSuperType(arg, param.Class)
		if !ok {
			return
		}
		generic, ok := asParam.(*GenericType)
		if !ok {
			return
		}
		for i, paramArg := range param.Args {
			if i < len(generic.Args) {
				Infer(paramArg, generic.Args[i], inferable, ctx)
			}
		}
	case *IntersectionType:
		for _, member := range param.Types {
			Infer(member, arg, inferable, ctx)
		}
	}
}

// InferableFrom returns a predicate accepting exactly params
func InferableFrom(params []*TypeParameter) func(*TypeParameter) bool {
	return func(p *TypeParameter) bool {
		for _, candidate := range params {
			if candidate == p {
				return true
			}
		}
		return false
	}
}

// Unbound returns a predicate accepting the parameters among params that ctx
// does not map yet
func Unbound(params []*TypeParameter, ctx *TypeContext) func(*TypeParameter) bool {
	inferable := InferableFrom(params)
	return func(p *TypeParameter) bool {
		if !inferable(p) {
			return false
		}
		_, bound := ctx.Get(p)
		return !bound
	}
}
