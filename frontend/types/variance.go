package types

type Variance uint8

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "covariant"
	case Contravariant:
		return "contravariant"
	default:
		return "invariant"
	}
}

// Mark is the declaration-site prefix of v: +, - or nothing
func (v Variance) Mark() string {
	switch v {
	case Covariant:
		return "+"
	case Contravariant:
		return "-"
	default:
		return ""
	}
}

// Flip swaps co- and contravariance, as happens when entering a parameter position
func (v Variance) Flip() Variance {
	switch v {
	case Covariant:
		return Contravariant
	case Contravariant:
		return Covariant
	default:
		return Invariant
	}
}

// Compose is the variance of a position with variance inner nested in a
// position with variance v
func (v Variance) Compose(inner Variance) Variance {
	switch {
	case v == Invariant || inner == Invariant:
		return Invariant
	case v == inner:
		return Covariant
	default:
		return Contravariant
	}
}

// Allows reports whether a type parameter declared with variance v may
// appear in a position of variance position
func (v Variance) Allows(position Variance) bool {
	return v == Invariant || v == position
}

// WalkVariance calls visit for every type variable in t, together with the
// variance of the position it occupies when t itself occupies a position of
// variance position
func WalkVariance(t Type, position Variance, visit func(*TypeParameter, Variance)) {
	switch t := t.(type) {
	case *TypeVar:
		visit(t.Param, position)
	case *GenericType:
		for i, arg := range t.Args {
			if i >= len(t.Class.TypeParams) {
				break
			}
			WalkVariance(arg, position.Compose(t.Class.TypeParams[i].Variance), visit)
		}
	case *IntersectionType:
		for _, member := range t.Types {
			WalkVariance(member, position, visit)
		}
	}
}
