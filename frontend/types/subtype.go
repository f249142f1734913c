package types

import (
	"sort"

	"github.com/hashicorp/go-set/v3"
	xset "github.com/xtgo/set"
)

// IsSuperType reports whether a value of type sub can be used where super is
// expected, honouring the declaration-site variance of generic arguments.
//
// Unknown is compatible both ways so that one unresolved expression does not
// produce a cascade of mismatches. Raw class types accept any parameterisation.
func IsSuperType(super, sub Type) bool {
	if IsUnknown(super) || IsUnknown(sub) {
		return true
	}
	if super == sub {
		return true
	}
	if super == Void || sub == Void {
		return super == sub
	}
	if sub == Null {
		c := ClassOf(super)
		return super == Null || c == nil || c.Primitive == 0
	}
	if super == Null {
		return false
	}

	switch sub := sub.(type) {
	case *IntersectionType:
		if superInter, ok := super.(*IntersectionType); ok {
			for _, member := range superInter.Types {
				if !IsSuperType(member, sub) {
					return false
				}
			}
			return true
		}
		for _, member := range sub.Types {
			if IsSuperType(super, member) {
				return true
			}
		}
		return false
	case *TypeVar:
		if superVar, ok := super.(*TypeVar); ok && superVar.Param == sub.Param {
			return true
		}
		if _, ok := super.(*TypeVar); ok {
			return lowerBoundAccepts(super.(*TypeVar), sub)
		}
		bounds := sub.Param.UpperBounds
		if len(bounds) == 0 {
			if erasure := sub.Param.Erasure(); erasure != nil {
				return IsSuperType(super, &ClassType{Class: erasure})
			}
			return false
		}
		for _, bound := range bounds {
			if IsSuperType(super, bound) {
				return true
			}
		}
		return false
	}

	switch super := super.(type) {
	case *TypeVar:
		return lowerBoundAccepts(super, sub)
	case *IntersectionType:
		for _, member := range super.Types {
			if !IsSuperType(member, sub) {
				return false
			}
		}
		return true
	case *ClassType:
		subClass := ClassOf(sub)
		return subClass != nil && subClass.IsSubclassOf(super.Class)
	case *GenericType:
		asSuper, ok := AsSuperType(sub, super.Class)
		if !ok {
			return false
		}
		subGeneric, ok := asSuper.(*GenericType)
		if !ok {
			// raw types are unchecked
			return true
		}
		return argumentsContain(super, subGeneric)
	}
	return false
}

func lowerBoundAccepts(super *TypeVar, sub Type) bool {
	lower := super.Param.LowerBound
	return lower != nil && IsSuperType(lower, sub)
}

func argumentsContain(super, sub *GenericType) bool {
	for i, param := range super.Class.TypeParams {
		if i >= len(super.Args) || i >= len(sub.Args) {
			return true
		}
		superArg, subArg := super.Args[i], sub.Args[i]
		switch param.Variance {
		case Covariant:
			if !IsSuperType(superArg, subArg) {
				return false
			}
		case Contravariant:
			if !IsSuperType(subArg, superArg) {
				return false
			}
		default:
			if !IsUnknown(superArg) && !IsUnknown(subArg) && !Equal(superArg, subArg) {
				return false
			}
		}
	}
	return true
}

// SuperTypesOf returns the direct super types of t with the type parameters
// of its class replaced by the arguments of t
func SuperTypesOf(t Type) []Type {
	c := ClassOf(t)
	if c == nil {
		return nil
	}
	direct := c.DirectSuperTypes()
	if _, ok := t.(*GenericType); !ok {
		return direct
	}
	ctx := ContextOf(t)
	supers := make([]Type, len(direct))
	for i, super := range direct {
		supers[i], _ = Substitute(super, ctx)
	}
	return supers
}

// AsSuperType finds how t parameterises target, e.g. ArrayList<Int> as List
// is List<Int>. ok is false when target is not an ancestor of t.
func AsSuperType(t Type, target *Class) (Type, bool) {
	visited := set.New[*Class](4)
	var walk func(Type) (Type, bool)
	walk = func(current Type) (Type, bool) {
		c := ClassOf(current)
		if c == nil {
			return nil, false
		}
		if c == target {
			if tv, isVar := current.(*TypeVar); isVar {
				return &ClassType{Class: tv.Param.Erasure()}, true
			}
			return current, true
		}
		if !visited.Insert(c) {
			return nil, false
		}
		if tv, isVar := current.(*TypeVar); isVar {
			for _, bound := range tv.Param.UpperBounds {
				if found, ok := walk(bound); ok {
					return found, true
				}
			}
			return nil, false
		}
		for _, super := range SuperTypesOf(current) {
			if found, ok := walk(super); ok {
				return found, true
			}
		}
		return nil, false
	}
	return walk(t)
}

// Ancestors returns the sorted qualified names of c and every class and
// interface it inherits from
func Ancestors(c *Class) []string {
	var names []string
	visited := set.New[*Class](8)
	var walk func(*Class)
	walk = func(current *Class) {
		if !visited.Insert(current) {
			return
		}
		names = append(names, current.QualifiedName())
		for _, super := range current.DirectSuperTypes() {
			if superClass := ClassOf(super); superClass != nil {
				walk(superClass)
			}
		}
	}
	walk(c)
	data := sort.StringSlice(names)
	sort.Sort(data)
	return names[:xset.Uniq(data)]
}

// LeastUpperBound is the most specific type both a and b can be used as,
// used to type the branches of conditionals
func LeastUpperBound(a, b Type) Type {
	switch {
	case IsUnknown(a) || IsUnknown(b):
		return Unknown
	case a == Void || b == Void:
		return Void
	case IsSuperType(a, b):
		return a
	case IsSuperType(b, a):
		return b
	}
	classA, classB := ClassOf(a), ClassOf(b)
	if classA == nil || classB == nil {
		return Unknown
	}

	common := commonAncestors(classA, classB)
	candidates := make([]*Class, 0, len(common))
	for _, name := range common {
		if c := findAncestor(classA, name); c != nil {
			candidates = append(candidates, c)
		}
	}
	// the most specific common ancestor is not an ancestor of another candidate,
	// classes are preferred to interfaces
	var best *Class
	for _, c := range candidates {
		mostSpecific := true
		for _, other := range candidates {
			if other != c && other.IsSubclassOf(c) {
				mostSpecific = false
				break
			}
		}
		if !mostSpecific {
			continue
		}
		if best == nil || best.IsInterface() && !c.IsInterface() {
			best = c
		}
	}
	if best == nil {
		return Unknown
	}
	fromA, _ := AsSuperType(a, best)
	fromB, _ := AsSuperType(b, best)
	if fromA != nil && fromB != nil && IsSuperType(fromA, fromB) {
		return fromA
	}
	if fromA != nil && fromB != nil && IsSuperType(fromB, fromA) {
		return fromB
	}
	return &ClassType{Class: best}
}

func commonAncestors(a, b *Class) []string {
	left, right := Ancestors(a), Ancestors(b)
	data := make(sort.StringSlice, 0, len(left)+len(right))
	data = append(data, left...)
	data = append(data, right...)
	return data[:xset.Inter(data, len(left))]
}

func findAncestor(c *Class, qualifiedName string) *Class {
	visited := set.New[*Class](8)
	var walk func(*Class) *Class
	walk = func(current *Class) *Class {
		if current.QualifiedName() == qualifiedName {
			return current
		}
		if !visited.Insert(current) {
			return nil
		}
		for _, super := range current.DirectSuperTypes() {
			if superClass := ClassOf(super); superClass != nil {
				if found := walk(superClass); found != nil {
					return found
				}
			}
		}
		return nil
	}
	return walk(c)
}
