package match

import (
	"cmp"
	"slices"

	"github.com/cottand/kiln/frontend/types"
	"github.com/hashicorp/go-set/v3"
)

// TiePolicy decides what happens when several candidates are equally good
type TiePolicy uint8

const (
	// TieAmbiguous reports the call as ambiguous
	TieAmbiguous TiePolicy = iota
	// TieFirstWins picks the candidate that was contributed first
	TieFirstWins
)

func (p TiePolicy) String() string {
	if p == TieFirstWins {
		return "first-wins"
	}
	return "ambiguous"
}

// ParseTiePolicy accepts the names String returns
func ParseTiePolicy(s string) (TiePolicy, bool) {
	switch s {
	case "ambiguous", "":
		return TieAmbiguous, true
	case "first-wins":
		return TieFirstWins, true
	}
	return TieAmbiguous, false
}

type Outcome uint8

const (
	NotFound Outcome = iota
	Found
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not found"
	}
}

// Request is the call overload resolution is run for
type Request struct {
	Name string
	// Receiver is the static type of the receiver, nil for unqualified calls
	// and constructors
	Receiver types.Type
	Args     Arguments
	// TypeArgs are the explicit type arguments of the call, if any
	TypeArgs []types.Type
	Policy   TiePolicy
}

// CandidateSet collects the candidates for one call as the scope chain is
// walked. It only grows.
type CandidateSet struct {
	Request
	all   []*Candidate
	seen  *set.Set[string]
	scope int
}

func NewCandidateSet(req Request) *CandidateSet {
	return &CandidateSet{
		Request: req,
		seen:    set.New[string](4),
	}
}

// NextScope marks that the following candidates come from a scope further out
func (s *CandidateSet) NextScope() { s.scope++ }

// Add scores member against the arguments and adds it. view is the type
// member was found through, such as Comparable<Int> for a method of
// Comparable<T> reached from Int; its type arguments seed the candidate's
// context. view is nil for constructors and top-level functions.
//
// A member with the same name and parameter types, as seen through its view,
// as one already added is overridden by it and is skipped, in which case Add
// returns nil.
func (s *CandidateSet) Add(member types.Callable, view types.Type) *Candidate {
	viewCtx := types.ContextOf(view)
	key := member.CallableName() + paramKey(member.Parameters(), viewCtx)
	if !s.seen.Insert(key) {
		return nil
	}
	c := &Candidate{
		Member: member,
		View:   view,
		Scope:  s.scope,
		Order:  len(s.all),
	}
	s.all = append(s.all, c)
	s.score(c, viewCtx)
	return c
}

func paramKey(params []*types.Parameter, viewCtx *types.TypeContext) string {
	key := "("
	for i, p := range params {
		if i > 0 {
			key += ","
		}
		t, _ := types.Substitute(p.Type, viewCtx)
		key += t.TypeName()
	}
	return key + ")"
}

func (s *CandidateSet) score(c *Candidate, viewCtx *types.TypeContext) {
	binding, ok := bind(c.Member.Parameters(), s.Args)
	if !ok {
		return
	}
	c.Binding = binding
	if !s.infer(c, viewCtx) {
		return
	}
	c.Qualities = make([]Quality, len(s.Args))
	c.Conversions = make([]*types.Method, len(s.Args))
	for i, arg := range s.Args {
		param := types.SubstituteOrDefault(c.ParamFor(i).Type, c.Context)
		c.Qualities[i], c.Conversions[i] = Score(param, arg)
	}
}

// infer builds the context of c from its view, the explicit type arguments
// and then the argument types. It reports false when explicit type arguments
// were given but do not fit.
func (s *CandidateSet) infer(c *Candidate, viewCtx *types.TypeContext) bool {
	ctx := viewCtx.Fork()
	params := c.Member.TypeParameters()
	if len(s.TypeArgs) > 0 {
		if len(s.TypeArgs) != len(params) {
			return false
		}
		for i, p := range params {
			ctx.Set(p, s.TypeArgs[i])
		}
	}
	for i, arg := range s.Args {
		if arg.IsImplicitLambda() {
			continue
		}
		types.Infer(c.ParamFor(i).Type, arg.Type, types.Unbound(params, ctx), ctx)
	}
	c.Context = ctx
	return true
}

// All returns every candidate in the order they were added
func (s *CandidateSet) All() []*Candidate { return s.all }

func (s *CandidateSet) Len() int { return len(s.all) }

// Found reports whether an applicable candidate was added: outer scopes
// need not be walked any more
func (s *CandidateSet) Found() bool {
	for _, c := range s.all {
		if c.Applicable() {
			return true
		}
	}
	return false
}

func (s *CandidateSet) Applicable() []*Candidate {
	var applicable []*Candidate
	for _, c := range s.all {
		if c.Applicable() {
			applicable = append(applicable, c)
		}
	}
	return applicable
}

// Maximal returns the applicable candidates no other candidate is better
// than, innermost scope first and then in the order they were added
func (s *CandidateSet) Maximal() []*Candidate {
	applicable := s.Applicable()
	var maximal []*Candidate
	for _, c := range applicable {
		beaten := false
		for _, other := range applicable {
			if other != c && Compare(other, c) > 0 {
				beaten = true
				break
			}
		}
		if !beaten {
			maximal = append(maximal, c)
		}
	}
	slices.SortStableFunc(maximal, func(a, b *Candidate) int {
		return cmp.Or(cmp.Compare(a.Scope, b.Scope), cmp.Compare(a.Order, b.Order))
	})
	return maximal
}

// Best picks the candidate for the call. With Ambiguous, best is nil and the
// tied candidates can be found with Maximal.
func (s *CandidateSet) Best() (best *Candidate, outcome Outcome) {
	maximal := s.Maximal()
	switch {
	case len(maximal) == 0:
		return nil, NotFound
	case len(maximal) == 1:
		return maximal[0], Found
	case s.Policy == TieFirstWins:
		// the innermost candidate, contributed first within its scope
		return maximal[0], Found
	default:
		return nil, Ambiguous
	}
}

// Describe returns the signatures of the given candidates
func Describe(candidates []*Candidate) []string {
	descriptions := make([]string, len(candidates))
	for i, c := range candidates {
		descriptions[i] = c.Describe()
	}
	return descriptions
}
