// Package scope is the chain of lookup contexts names are resolved against.
//
// A chain goes, from the outside in:
//
//	Global -> Header -> Class -> Method -> Block* -> Lambda -> Block* ...
//
// Every query is answered by the innermost link that knows the name, so inner
// declarations shadow outer ones. Links are never mutated once handed out:
// Block.With returns a new link. The only query with a side effect is
// Capture, which grows the capture table of a lambda, never the chain itself.
package scope

import (
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
)

type Context interface {
	// ResolveClass finds a class by simple or qualified name
	ResolveClass(name string) *types.Class
	ResolveTypeParameter(name string) *types.TypeParameter
	// ResolveField finds the data member a bare name refers to: a local
	// variable, a parameter, a field of the enclosing classes or a
	// top-level field
	ResolveField(name string) types.DataMember

	// ContributeMethods adds the methods called name visible from this
	// context to set, walking outwards until a link contributed an
	// applicable candidate
	ContributeMethods(set *match.CandidateSet, name string)
	// ContributeConstructors adds the constructors of c to set
	ContributeConstructors(set *match.CandidateSet, c *types.Class)

	// IsStatic reports whether there is no `this` instance here
	IsStatic() bool
	// ThisClass is the class whose body this context is in, nil in top-level code
	ThisClass() *types.Class
	// ReturnType is what the enclosing method or lambda returns, nil when unknown
	ReturnType() types.Type

	// Capture makes member, declared somewhere in the chain, available here.
	// It returns member itself if no lambda lies between here and its
	// declaration, or the capture slot of the innermost lambda otherwise.
	// ok is false if no link declares member.
	Capture(member types.DataMember) (captured types.DataMember, ok bool)
	// CaptureThis is Capture for the enclosing instance
	CaptureThis() (captured types.DataMember, ok bool)

	Universe() *universe.Universe
}

// ResolveType resolves a simple name to a type parameter in scope or,
// failing that, to a class used raw
func ResolveType(ctx Context, name string) (types.Type, bool) {
	if p := ctx.ResolveTypeParameter(name); p != nil {
		return p.Var(), true
	}
	if c := ctx.ResolveClass(name); c != nil {
		return &types.ClassType{Class: c}, true
	}
	return types.Unknown, false
}

// ThisType is the type of `this` in ctx, nil in static contexts
func ThisType(ctx Context) types.Type {
	c := ctx.ThisClass()
	if c == nil || ctx.IsStatic() {
		return nil
	}
	return c.ThisType()
}

// link answers every query by asking its parent, and is embedded by links
// that only answer some queries themselves
type link struct {
	parent Context
}

func (l link) ResolveClass(name string) *types.Class { return l.parent.ResolveClass(name) }
func (l link) ResolveTypeParameter(name string) *types.TypeParameter {
	return l.parent.ResolveTypeParameter(name)
}
func (l link) ResolveField(name string) types.DataMember { return l.parent.ResolveField(name) }
func (l link) ContributeMethods(set *match.CandidateSet, name string) {
	l.parent.ContributeMethods(set, name)
}
func (l link) ContributeConstructors(set *match.CandidateSet, c *types.Class) {
	l.parent.ContributeConstructors(set, c)
}
func (l link) IsStatic() bool               { return l.parent.IsStatic() }
func (l link) ThisClass() *types.Class      { return l.parent.ThisClass() }
func (l link) ReturnType() types.Type       { return l.parent.ReturnType() }
func (l link) Universe() *universe.Universe { return l.parent.Universe() }
func (l link) Capture(member types.DataMember) (types.DataMember, bool) {
	return l.parent.Capture(member)
}
func (l link) CaptureThis() (types.DataMember, bool) { return l.parent.CaptureThis() }

// Parent returns the next link out, nil for the outermost one
func (l link) Parent() Context { return l.parent }
