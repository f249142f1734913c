package match

import (
	"fmt"

	"github.com/cottand/kiln/frontend/types"
)

// Candidate is a callable member considered for a call, together with how
// well each argument matches it
type Candidate struct {
	Member types.Callable
	// View is the type the member was found through
	View types.Type
	// Binding maps each argument to the index of the parameter it is passed to
	Binding []int
	// Qualities holds one Quality per argument, nil if the arity or the
	// labels did not fit
	Qualities []Quality
	// Conversions holds, per argument, the implicit conversion to insert
	Conversions []*types.Method
	// Context maps the type parameters of Member, and of the receiver type's
	// class, to what was inferred or given. It may still miss parameters
	// that only a lambda argument can bind.
	Context *types.TypeContext
	// Scope is the distance from the innermost scope that contributed the candidate
	Scope int
	// Order is the position in which the candidate was contributed
	Order int
}

// Applicable reports whether every argument can be passed to the candidate
func (c *Candidate) Applicable() bool {
	if c.Qualities == nil {
		return false
	}
	for _, q := range c.Qualities {
		if q == Mismatch {
			return false
		}
	}
	return true
}

// Generic reports whether the candidate declares type parameters to infer
func (c *Candidate) Generic() bool {
	return len(c.Member.TypeParameters()) > 0
}

// ParamFor returns the parameter argument i is passed to
func (c *Candidate) ParamFor(i int) *types.Parameter {
	return c.Member.Parameters()[c.Binding[i]]
}

// ParamType is the type of the parameter argument i is passed to, with the
// candidate's context substituted. Type parameters not inferred yet are kept.
func (c *Candidate) ParamType(i int) types.Type {
	t, _ := types.Substitute(c.ParamFor(i).Type, c.Context)
	return t
}

// ReturnType is the return type of the candidate with its context substituted
func (c *Candidate) ReturnType() types.Type {
	t, _ := types.Substitute(c.Member.ReturnType(), c.Context)
	return t
}

// Compare orders two applicable candidates: 1 if a is better than b, -1 if
// b is better than a, 0 if neither is.
//
// A candidate is better when it matches every argument at least as well and
// one strictly better. Otherwise a non-generic candidate is better than a
// generic one.
func Compare(a, b *Candidate) int {
	switch {
	case dominates(a.Qualities, b.Qualities):
		return 1
	case dominates(b.Qualities, a.Qualities):
		return -1
	}
	aGeneric, bGeneric := a.Generic(), b.Generic()
	switch {
	case !aGeneric && bGeneric:
		return 1
	case aGeneric && !bGeneric:
		return -1
	}
	return 0
}

// Describe is the signature of the candidate as shown in diagnostics
func (c *Candidate) Describe() string {
	if _, isCtor := c.Member.(*types.Constructor); isCtor {
		return c.Member.Signature()
	}
	sig := c.Member.Signature() + ": " + c.Member.ReturnType().TypeName()
	if owner := c.Member.OwnerClass(); owner != nil {
		return owner.Name + "." + sig
	}
	return sig
}

func (c *Candidate) String() string {
	if c.Qualities == nil {
		return c.Describe() + " [not applicable]"
	}
	return fmt.Sprintf("%s %v", c.Describe(), c.Qualities)
}
