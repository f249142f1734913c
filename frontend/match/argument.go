package match

import "github.com/cottand/kiln/frontend/types"

// Argument is what overload resolution knows about one argument of a call
type Argument struct {
	// Label is the parameter name of a named argument, empty for positional ones
	Label string
	Type  types.Type
	// LambdaArity is the number of parameters of an implicitly typed lambda
	// argument, whose type only becomes known once a candidate is chosen.
	// It is -1 for every other argument.
	LambdaArity int
}

// Typed is a positional argument of a known type
func Typed(t types.Type) Argument {
	return Argument{Type: t, LambdaArity: -1}
}

// Labeled is a named argument of a known type
func Labeled(label string, t types.Type) Argument {
	return Argument{Label: label, Type: t, LambdaArity: -1}
}

// ImplicitLambda is a lambda argument whose parameter types are not written
func ImplicitLambda(label string, arity int) Argument {
	return Argument{Label: label, Type: types.Unknown, LambdaArity: arity}
}

func (a Argument) IsImplicitLambda() bool { return a.LambdaArity >= 0 }

type Arguments []Argument

// Types returns the static types of the arguments, for diagnostics
func (args Arguments) Types() []types.Type {
	ts := make([]types.Type, len(args))
	for i, arg := range args {
		ts[i] = arg.Type
	}
	return ts
}

// bind assigns every argument to a parameter: positional arguments in order,
// then named arguments by label. It returns, per argument, the index of its
// parameter; ok is false unless every parameter received exactly one argument.
func bind(params []*types.Parameter, args Arguments) (binding []int, ok bool) {
	if len(params) != len(args) {
		return nil, false
	}
	binding = make([]int, len(args))
	taken := make([]bool, len(params))
	named := false
	for i, arg := range args {
		if arg.Label == "" {
			if named {
				// positional arguments may not follow named ones
				return nil, false
			}
			binding[i] = i
			taken[i] = true
			continue
		}
		named = true
		found := -1
		for j, p := range params {
			if p.Name == arg.Label {
				found = j
				break
			}
		}
		if found < 0 || taken[found] {
			return nil, false
		}
		binding[i] = found
		taken[found] = true
	}
	return binding, true
}
