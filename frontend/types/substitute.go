package types

// Substitute replaces every type variable in t that ctx maps.
//
// Variables ctx does not map are left in place and ok is false: callers treat
// that as a soft failure until every inference source has been tried.
// Substituting over an empty context returns t itself.
func Substitute(t Type, ctx *TypeContext) (result Type, ok bool) {
	if ctx.Len() == 0 {
		return t, !hasTypeVars(t)
	}
	return substitute(t, ctx)
}

func substitute(t Type, ctx *TypeContext) (Type, bool) {
	switch t := t.(type) {
	case *TypeVar:
		if mapped, found := ctx.Get(t.Param); found {
			return mapped, true
		}
		return t, false
	case *GenericType:
		args, changed, ok := substituteAll(t.Args, ctx)
		if !changed {
			return t, ok
		}
		return &GenericType{Class: t.Class, Args: args}, ok
	case *IntersectionType:
		members, changed, ok := substituteAll(t.Types, ctx)
		if !changed {
			return t, ok
		}
		return &IntersectionType{Types: members}, ok
	default:
		return t, true
	}
}

func substituteAll(ts []Type, ctx *TypeContext) (result []Type, changed bool, ok bool) {
	ok = true
	result = make([]Type, len(ts))
	for i, arg := range ts {
		substituted, argOk := substitute(arg, ctx)
		ok = ok && argOk
		changed = changed || substituted != arg
		result[i] = substituted
	}
	return result, changed, ok
}

// SubstituteOrDefault substitutes t and then replaces every type variable
// still left with its default type
func SubstituteOrDefault(t Type, ctx *TypeContext) Type {
	substituted, ok := Substitute(t, ctx)
	if ok {
		return substituted
	}
	return withDefaults(substituted, 0)
}

// maxDefaultDepth guards against F-bounded parameters (T: Comparable<T>)
// whose default type mentions the parameter itself
const maxDefaultDepth = 4

func withDefaults(t Type, depth int) Type {
	switch t := t.(type) {
	case *TypeVar:
		def := t.Param.DefaultType()
		if def == nil || depth >= maxDefaultDepth {
			if erasure := t.Param.Erasure(); erasure != nil {
				return &ClassType{Class: erasure}
			}
			return Unknown
		}
		return withDefaults(def, depth+1)
	case *GenericType:
		args := make([]Type, len(t.Args))
		for i, arg := range t.Args {
			args[i] = withDefaults(arg, depth)
		}
		return &GenericType{Class: t.Class, Args: args}
	case *IntersectionType:
		members := make([]Type, len(t.Types))
		for i, member := range t.Types {
			members[i] = withDefaults(member, depth)
		}
		return &IntersectionType{Types: members}
	default:
		return t
	}
}

func hasTypeVars(t Type) bool {
	return len(FreeTypeParams(t)) > 0
}

// FreeTypeParams returns the type parameters t mentions, in order of appearance
func FreeTypeParams(t Type) []*TypeParameter {
	var params []*TypeParameter
	var walk func(Type)
	walk = func(t Type) {
		switch t := t.(type) {
		case *TypeVar:
			for _, p := range params {
				if p == t.Param {
					return
				}
			}
			params = append(params, t.Param)
		case *GenericType:
			for _, arg := range t.Args {
				walk(arg)
			}
		case *IntersectionType:
			for _, member := range t.Types {
				walk(member)
			}
		}
	}
	walk(t)
	return params
}
