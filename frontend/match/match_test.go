package match

import (
	"testing"

	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func method(name string, ret types.Type, params ...*types.Parameter) *types.Method {
	return &types.Method{Name: name, Params: params, Return: ret, Modifiers: types.Public | types.Static}
}

func param(name string, t types.Type) *types.Parameter { return &types.Parameter{Name: name, Type: t} }

func TestExactBeatsConversionAndSubtype(t *testing.T) {
	b := universe.New().Builtins()
	intT, longT, anyT := b.Type(b.Int), b.Type(b.Long), b.Type(b.Any)
	fInt := method("f", intT, param("x", intT))
	fLong := method("f", intT, param("x", longT))
	fAny := method("f", intT, param("x", anyT))

	set := NewCandidateSet(Request{Name: "f", Args: Arguments{Typed(intT)}})
	set.Add(fLong, nil)
	set.Add(fAny, nil)
	set.Add(fInt, nil)

	require.Equal(t, 3, set.Len())
	assert.Equal(t, []Quality{Conversion}, set.All()[0].Qualities)
	assert.Equal(t, "i2l", set.All()[0].Conversions[0].Intrinsic)
	assert.Equal(t, []Quality{Subtype}, set.All()[1].Qualities)

	best, outcome := set.Best()
	assert.Equal(t, Found, outcome)
	assert.Same(t, fInt, best.Member)
}

func TestTiePolicy(t *testing.T) {
	b := universe.New().Builtins()
	intT, longT, shortT := b.Type(b.Int), b.Type(b.Long), b.Type(b.Short)
	fInt := method("f", intT, param("x", intT))
	fLong := method("f", intT, param("x", longT))

	for _, test := range []struct {
		policy  TiePolicy
		outcome Outcome
		best    *types.Method
	}{
		{TieAmbiguous, Ambiguous, nil},
		{TieFirstWins, Found, fInt},
	} {
		t.Run(test.policy.String(), func(t *testing.T) {
			set := NewCandidateSet(Request{Name: "f", Args: Arguments{Typed(shortT)}, Policy: test.policy})
			set.Add(fInt, nil)
			set.Add(fLong, nil)

			best, outcome := set.Best()
			assert.Equal(t, test.outcome, outcome)
			assert.Len(t, set.Maximal(), 2)
			if test.best == nil {
				assert.Nil(t, best)
			} else {
				assert.Same(t, test.best, best.Member)
			}
		})
	}
}

func TestNonGenericBeatsGeneric(t *testing.T) {
	b := universe.New().Builtins()
	intT := b.Type(b.Int)

	tp := types.NewTypeParameter("T", types.Invariant, 0)
	tp.Bind(nil, nil, b.Any)
	generic := method("g", tp.Var(), param("x", tp.Var()))
	generic.TypeParams = []*types.TypeParameter{tp}
	plain := method("g", intT, param("x", intT))

	set := NewCandidateSet(Request{Name: "g", Args: Arguments{Typed(intT)}})
	genericCandidate := set.Add(generic, nil)
	set.Add(plain, nil)

	assert.Equal(t, []Quality{Exact}, genericCandidate.Qualities)
	assert.True(t, types.Equal(intT, genericCandidate.ReturnType()))
	best, outcome := set.Best()
	require.Equal(t, Found, outcome)
	assert.Same(t, plain, best.Member)
}

func TestNamedArguments(t *testing.T) {
	b := universe.New().Builtins()
	intT, stringT := b.Type(b.Int), b.Type(b.String)
	h := method("h", intT, param("a", intT), param("b", stringT))

	set := NewCandidateSet(Request{Name: "h", Args: Arguments{Labeled("b", stringT), Labeled("a", intT)}})
	c := set.Add(h, nil)
	assert.True(t, c.Applicable())
	assert.Equal(t, []int{1, 0}, c.Binding)

	set = NewCandidateSet(Request{Name: "h", Args: Arguments{Labeled("a", intT), Typed(stringT)}})
	c = set.Add(h, nil)
	assert.False(t, c.Applicable(), "positional arguments cannot follow named ones")

	set = NewCandidateSet(Request{Name: "h", Args: Arguments{Typed(intT), Labeled("a", stringT)}})
	c = set.Add(h, nil)
	assert.False(t, c.Applicable(), "a parameter takes one argument")
}

func TestImplicitLambdaMatchesByArity(t *testing.T) {
	b := universe.New().Builtins()
	intT := b.Type(b.Int)
	fnType, ok := b.FunctionType([]types.Type{intT}, intT)
	require.True(t, ok)
	m := method("m", intT, param("f", fnType))

	set := NewCandidateSet(Request{Name: "m", Args: Arguments{ImplicitLambda("", 1)}})
	assert.Equal(t, []Quality{Subtype}, set.Add(m, nil).Qualities)

	set = NewCandidateSet(Request{Name: "m", Args: Arguments{ImplicitLambda("", 2)}})
	assert.False(t, set.Add(m, nil).Applicable())
	assert.False(t, set.Found())
}

func TestCandidatesOfOuterScopes(t *testing.T) {
	b := universe.New().Builtins()
	intT := b.Type(b.Int)
	inner := method("f", intT, param("x", intT))
	sameSignature := method("f", intT, param("y", intT))

	set := NewCandidateSet(Request{Name: "f", Args: Arguments{Typed(intT)}})
	set.Add(inner, nil)
	set.NextScope()
	assert.Nil(t, set.Add(sameSignature, nil), "hidden by a member of the same signature")
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, 0, set.All()[0].Scope)
}

func TestScore(t *testing.T) {
	b := universe.New().Builtins()
	intT, numberT, stringT := b.Type(b.Int), b.Type(b.Number), b.Type(b.String)

	q, _ := Score(numberT, Typed(intT))
	assert.Equal(t, Subtype, q)
	q, _ = Score(intT, Typed(stringT))
	assert.Equal(t, Mismatch, q)
	q, _ = Score(intT, Typed(types.Unknown))
	assert.Equal(t, Subtype, q, "unknown arguments do not cascade")
	q, _ = Score(b.Type(b.Double), Typed(intT))
	assert.Equal(t, Conversion, q)
}

func TestFirstWinsPrefersInnermostScope(t *testing.T) {
	b := universe.New().Builtins()
	intT, longT, shortT := b.Type(b.Int), b.Type(b.Long), b.Type(b.Short)
	inner := method("f", intT, param("x", longT))
	outer := method("f", intT, param("x", intT))

	set := NewCandidateSet(Request{Name: "f", Args: Arguments{Typed(shortT)}, Policy: TieFirstWins})
	set.Add(inner, nil)
	set.NextScope()
	set.Add(outer, nil)

	maximal := set.Maximal()
	require.Len(t, maximal, 2)
	assert.Equal(t, []int{0, 1}, []int{maximal[0].Scope, maximal[1].Scope})
	best, outcome := set.Best()
	assert.Equal(t, Found, outcome)
	assert.Same(t, inner, best.Member)
	assert.Equal(t, 0, best.Order)
}
