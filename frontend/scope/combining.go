package scope

import (
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
)

var (
	_ Context = (*Combining)(nil)
	_ Context = (*Bindings)(nil)
)

// Combining answers name lookups from inner first and from outer when inner
// does not know the name. What the enclosing code is like (static or not, its
// class, what it returns) comes from outer.
type Combining struct {
	inner Context
	outer Context
}

func Combine(inner, outer Context) *Combining {
	return &Combining{inner: inner, outer: outer}
}

func (c *Combining) Inner() Context { return c.inner }
func (c *Combining) Outer() Context { return c.outer }

func (c *Combining) ResolveClass(name string) *types.Class {
	if found := c.inner.ResolveClass(name); found != nil {
		return found
	}
	return c.outer.ResolveClass(name)
}

func (c *Combining) ResolveTypeParameter(name string) *types.TypeParameter {
	if found := c.inner.ResolveTypeParameter(name); found != nil {
		return found
	}
	return c.outer.ResolveTypeParameter(name)
}

func (c *Combining) ResolveField(name string) types.DataMember {
	if found := c.inner.ResolveField(name); found != nil {
		return found
	}
	return c.outer.ResolveField(name)
}

func (c *Combining) ContributeMethods(set *match.CandidateSet, name string) {
	c.inner.ContributeMethods(set, name)
	if set.Found() {
		return
	}
	set.NextScope()
	c.outer.ContributeMethods(set, name)
}

func (c *Combining) ContributeConstructors(set *match.CandidateSet, class *types.Class) {
	c.inner.ContributeConstructors(set, class)
	if set.Found() {
		return
	}
	c.outer.ContributeConstructors(set, class)
}

func (c *Combining) IsStatic() bool               { return c.outer.IsStatic() }
func (c *Combining) ThisClass() *types.Class      { return c.outer.ThisClass() }
func (c *Combining) ReturnType() types.Type       { return c.outer.ReturnType() }
func (c *Combining) Universe() *universe.Universe { return c.outer.Universe() }

func (c *Combining) Capture(member types.DataMember) (types.DataMember, bool) {
	if captured, ok := c.inner.Capture(member); ok {
		return captured, true
	}
	return c.outer.Capture(member)
}

func (c *Combining) CaptureThis() (types.DataMember, bool) { return c.outer.CaptureThis() }

// Bindings is a standalone set of variables, such as the parameters of a
// lambda, meant to be combined with the context it appears in. It knows
// nothing but its variables.
type Bindings struct {
	vars []*types.Variable
}

func NewBindings(vars ...*types.Variable) *Bindings {
	return &Bindings{vars: vars}
}

func (b *Bindings) ResolveField(name string) types.DataMember {
	// later bindings shadow earlier ones
	for i := len(b.vars) - 1; i >= 0; i-- {
		if b.vars[i].Name == name {
			return b.vars[i]
		}
	}
	return nil
}

func (b *Bindings) Capture(member types.DataMember) (types.DataMember, bool) {
	for _, v := range b.vars {
		if types.DataMember(v) == member {
			return v, true
		}
	}
	return nil, false
}

func (b *Bindings) ResolveClass(string) *types.Class                 { return nil }
func (b *Bindings) ResolveTypeParameter(string) *types.TypeParameter { return nil }
func (b *Bindings) IsStatic() bool                                   { return true }
func (b *Bindings) ThisClass() *types.Class                          { return nil }
func (b *Bindings) ReturnType() types.Type                           { return nil }
func (b *Bindings) CaptureThis() (types.DataMember, bool)            { return nil, false }
func (b *Bindings) Universe() *universe.Universe                     { return nil }

func (b *Bindings) ContributeMethods(*match.CandidateSet, string)           {}
func (b *Bindings) ContributeConstructors(*match.CandidateSet, *types.Class) {}
