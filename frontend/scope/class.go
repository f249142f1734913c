package scope

import (
	"github.com/cottand/kiln/frontend/capture"
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/types"
)

var _ Context = (*Class)(nil)

// Class is the body of a class: its type parameters, and the fields and
// methods it declares or inherits
type Class struct {
	link
	class *types.Class
	this  *capture.This
}

func NewClass(parent Context, c *types.Class) *Class {
	return &Class{
		link:  link{parent: parent},
		class: c,
		this:  &capture.This{Class: c},
	}
}

func (c *Class) ResolveTypeParameter(name string) *types.TypeParameter {
	for _, p := range c.class.TypeParams {
		if p.Name == name {
			return p
		}
	}
	return c.parent.ResolveTypeParameter(name)
}

func (c *Class) ResolveField(name string) types.DataMember {
	for _, view := range types.Hierarchy(c.class.ThisType()) {
		if f := types.ClassOf(view).OwnField(name); f != nil {
			return f
		}
	}
	return c.parent.ResolveField(name)
}

// ContributeMethods adds the methods of the class and of its ancestors, each
// seen from the class. Overrides hide what they override.
func (c *Class) ContributeMethods(set *match.CandidateSet, name string) {
	for _, view := range types.Hierarchy(c.class.ThisType()) {
		for _, m := range types.ClassOf(view).OwnMethods(name) {
			set.Add(m, view)
		}
	}
	if set.Found() {
		return
	}
	set.NextScope()
	c.parent.ContributeMethods(set, name)
}

func (c *Class) IsStatic() bool          { return false }
func (c *Class) ThisClass() *types.Class { return c.class }

func (c *Class) CaptureThis() (types.DataMember, bool) { return c.this, true }

// This is the binding of the enclosing instance in the class body
func (c *Class) This() *capture.This { return c.this }
