package types

import (
	"fmt"
	"strings"
	"sync/atomic"
)

var typeParamIDs atomic.Uint64

// TypeParameter is a type parameter of a generic class or method.
//
// Its bounds are set once by Bind, after which Erasure and DefaultType are
// fixed.
type TypeParameter struct {
	Name     string
	Variance Variance
	// UpperBounds are intersected; the first class-typed bound decides the erasure
	UpperBounds []Type
	// LowerBound may be nil
	LowerBound Type
	Index      int
	// Owner is the qualified name of the declaring class or method, for diagnostics
	Owner string

	id          uint64
	bound       bool
	erasure     *Class
	defaultType Type
}

func NewTypeParameter(name string, variance Variance, index int) *TypeParameter {
	return &TypeParameter{
		Name:     name,
		Variance: variance,
		Index:    index,
		id:       typeParamIDs.Add(1),
	}
}

// Var returns a reference to p
func (p *TypeParameter) Var() *TypeVar { return &TypeVar{Param: p} }

func (p *TypeParameter) String() string {
	sb := strings.Builder{}
	sb.WriteString(p.Variance.Mark())
	sb.WriteString(p.Name)
	if len(p.UpperBounds) > 0 {
		sb.WriteString(": ")
		for i, b := range p.UpperBounds {
			if i > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(b.TypeName())
		}
	}
	if p.LowerBound != nil {
		sb.WriteString(" super ")
		sb.WriteString(p.LowerBound.TypeName())
	}
	return sb.String()
}

func (p *TypeParameter) IsBound() bool { return p.bound }

// BoundProblem describes a bound that Bind rejected
type BoundProblem struct {
	Index int
	Bound Type
	// Reason is a human-readable explanation
	Reason string
}

// Bind sets the bounds of p and derives its erasure and default type.
// top is the class every type extends, used when no bound is class-typed.
//
// Every bound after the first class-typed bound must be an interface; a
// violating bound is reported but kept, so that later checks see it.
func (p *TypeParameter) Bind(upper []Type, lower Type, top *Class) []BoundProblem {
	if p.bound {
		panic(fmt.Sprintf("bounds of type parameter %s bound twice", p.Name))
	}
	var problems []BoundProblem
	seenClass := false
	for i, b := range upper {
		c := boundClass(b)
		if c == nil {
			continue
		}
		if c.IsInterface() {
			continue
		}
		if seenClass {
			problems = append(problems, BoundProblem{
				Index:  i,
				Bound:  b,
				Reason: fmt.Sprintf("'%s' is a class, but only interfaces may follow the first class bound", b.TypeName()),
			})
		}
		seenClass = true
	}

	p.UpperBounds = upper
	p.LowerBound = lower
	p.erasure = top
	for _, b := range upper {
		if c := boundClass(b); c != nil {
			p.erasure = c
			break
		}
	}
	switch len(upper) {
	case 0:
		p.defaultType = &ClassType{Class: top}
	case 1:
		p.defaultType = upper[0]
	default:
		p.defaultType = &IntersectionType{Types: upper}
	}
	p.bound = true
	return problems
}

func boundClass(t Type) *Class {
	switch t := t.(type) {
	case *ClassType:
		return t.Class
	case *GenericType:
		return t.Class
	}
	return nil
}

// Erasure is the class values of this type parameter are represented as.
// It is nil until Bind is called.
func (p *TypeParameter) Erasure() *Class { return p.erasure }

// DefaultType is the intersection of the upper bounds, used when nothing
// more specific could be inferred. It is nil until Bind is called.
func (p *TypeParameter) DefaultType() Type { return p.defaultType }

// Accepts reports whether arg satisfies every bound of p, once the bounds
// are substituted by ctx (bounds may mention p itself, as in T: Comparable<T>)
func (p *TypeParameter) Accepts(arg Type, ctx *TypeContext) bool {
	if IsUnknown(arg) {
		return true
	}
	for _, b := range p.UpperBounds {
		substituted, _ := Substitute(b, ctx)
		if !IsSuperType(substituted, arg) {
			return false
		}
	}
	if p.LowerBound != nil {
		substituted, _ := Substitute(p.LowerBound, ctx)
		if !IsSuperType(arg, substituted) {
			return false
		}
	}
	return true
}
