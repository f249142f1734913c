package match

import "github.com/cottand/kiln/frontend/types"

// Quality is how well one argument matches its parameter. Higher is better.
type Quality uint8

const (
	// Mismatch excludes the candidate
	Mismatch Quality = iota
	// Conversion needs an implicit conversion method to be inserted
	Conversion
	// Subtype passes a subtype of the parameter type
	Subtype
	// Exact passes exactly the parameter type
	Exact
)

func (q Quality) String() string {
	switch q {
	case Conversion:
		return "conversion"
	case Subtype:
		return "subtype"
	case Exact:
		return "exact"
	default:
		return "mismatch"
	}
}

// Score rates passing arg to a parameter of type param. conv is the
// conversion to insert when the quality is Conversion.
func Score(param types.Type, arg Argument) (q Quality, conv *types.Method) {
	if arg.IsImplicitLambda() {
		c := types.ClassOf(param)
		if c == nil {
			return Mismatch, nil
		}
		sam := c.FunctionalMethod()
		if sam == nil || len(sam.Params) != arg.LambdaArity {
			return Mismatch, nil
		}
		return Subtype, nil
	}
	switch {
	case types.IsUnknown(arg.Type) || types.IsUnknown(param):
		return Subtype, nil
	case types.Equal(param, arg.Type):
		return Exact, nil
	case types.IsSuperType(param, arg.Type):
		return Subtype, nil
	}
	if conv := types.FindConversion(arg.Type, param); conv != nil {
		return Conversion, conv
	}
	return Mismatch, nil
}

// dominates reports whether a is at least as good as b for every argument,
// and strictly better for one
func dominates(a, b []Quality) bool {
	if len(a) != len(b) {
		return false
	}
	better := false
	for i := range a {
		if a[i] < b[i] {
			return false
		}
		if a[i] > b[i] {
			better = true
		}
	}
	return better
}
