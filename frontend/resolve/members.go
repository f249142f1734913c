package resolve

import (
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
)

// Views returns the types whose members a value of type t has, each
// parameterised as seen from t. A type variable has the members of its
// bounds.
func Views(t types.Type) []types.Type {
	switch t := t.(type) {
	case *types.TypeVar:
		if len(t.Param.UpperBounds) == 0 {
			if erasure := t.Param.Erasure(); erasure != nil {
				return types.Hierarchy(&types.ClassType{Class: erasure})
			}
			return nil
		}
		var views []types.Type
		for _, bound := range t.Param.UpperBounds {
			views = append(views, Views(bound)...)
		}
		return views
	case *types.IntersectionType:
		var views []types.Type
		for _, member := range t.Types {
			views = append(views, Views(member)...)
		}
		return views
	default:
		return types.Hierarchy(t)
	}
}

// Method runs overload resolution for a call: unqualified calls are looked up
// through the scope chain, qualified ones among the instance methods of the
// receiver type. best is nil unless exactly one candidate won, or the tie
// policy of req picked one; set holds every candidate considered.
func Method(ctx scope.Context, req match.Request) (best *match.Candidate, set *match.CandidateSet) {
	set = match.NewCandidateSet(req)
	if req.Receiver == nil {
		ctx.ContributeMethods(set, req.Name)
	} else {
		for _, view := range Views(req.Receiver) {
			for _, m := range types.ClassOf(view).OwnMethods(req.Name) {
				if !m.IsStatic() {
					set.Add(m, view)
				}
			}
		}
	}
	best, outcome := set.Best()
	logger.Debug("resolved method", "name", req.Name, "candidates", set.Len(), "outcome", outcome.String())
	return best, set
}

// StaticMethod runs overload resolution for a call qualified by the class c
func StaticMethod(c *types.Class, req match.Request) (best *match.Candidate, set *match.CandidateSet) {
	set = match.NewCandidateSet(req)
	for _, view := range types.Hierarchy(&types.ClassType{Class: c}) {
		for _, m := range types.ClassOf(view).OwnMethods(req.Name) {
			if m.IsStatic() {
				set.Add(m, nil)
			}
		}
	}
	best, _ = set.Best()
	return best, set
}

// Constructor runs overload resolution over the constructors of c
func Constructor(ctx scope.Context, c *types.Class, req match.Request) (best *match.Candidate, set *match.CandidateSet) {
	set = match.NewCandidateSet(req)
	ctx.ContributeConstructors(set, c)
	best, outcome := set.Best()
	logger.Debug("resolved constructor", "class", c.Name, "candidates", set.Len(), "outcome", outcome.String())
	return best, set
}

// HasMethod reports whether any method called name is visible from ctx, or
// declared on receiver when it is not nil
func HasMethod(ctx scope.Context, receiver types.Type, name string) bool {
	_, set := Method(ctx, match.Request{Name: name, Receiver: receiver})
	return set.Len() > 0
}

// Field finds the instance field called name of a value of type receiver.
// Its type is returned as seen from receiver.
func Field(receiver types.Type, name string) (*types.Field, types.Type) {
	for _, view := range Views(receiver) {
		if f := types.ClassOf(view).OwnField(name); f != nil && !f.IsStatic() {
			t, _ := types.Substitute(f.Type, types.ContextOf(view))
			return f, t
		}
	}
	return nil, nil
}

// StaticField finds the static field called name of c or its ancestors
func StaticField(c *types.Class, name string) *types.Field {
	for _, view := range types.Hierarchy(&types.ClassType{Class: c}) {
		if f := types.ClassOf(view).OwnField(name); f != nil && f.IsStatic() {
			return f
		}
	}
	return nil
}

// MemberType is the type of member when read in a context whose `this` has
// type this, which may be nil. Inherited instance fields are seen through
// this, so that a field of type T declared in Box<T> reads as Int from a
// class extending Box<Int>.
func MemberType(member types.DataMember, this types.Type) types.Type {
	f, ok := member.(*types.Field)
	if !ok || f.IsStatic() || this == nil || f.Owner == nil {
		return member.MemberType()
	}
	view, found := types.AsSuperType(this, f.Owner)
	if !found {
		return f.Type
	}
	t, _ := types.Substitute(f.Type, types.ContextOf(view))
	return t
}
