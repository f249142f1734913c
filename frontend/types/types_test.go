package types_test

import (
	"testing"

	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtins() *universe.Builtins { return universe.New().Builtins() }

func TestSubtypingHonoursVariance(t *testing.T) {
	b := builtins()
	intT, numberT, longT := b.Type(b.Int), b.Type(b.Number), b.Type(b.Long)

	box := &types.Class{Name: "Box", Package: "demo", SuperType: b.Type(b.Any)}
	boxParam := types.NewTypeParameter("T", types.Invariant, 0)
	boxParam.Bind(nil, nil, b.Any)
	box.TypeParams = []*types.TypeParameter{boxParam}

	for _, test := range []struct {
		name       string
		super, sub types.Type
		want       bool
	}{
		{"class", numberT, intT, true},
		{"not a subclass", intT, numberT, false},
		{"covariant", types.Apply(b.List, numberT), types.Apply(b.List, intT), true},
		{"covariant reversed", types.Apply(b.List, intT), types.Apply(b.List, numberT), false},
		{"contravariant", types.Apply(b.Comparable, intT), types.Apply(b.Comparable, numberT), true},
		{"contravariant reversed", types.Apply(b.Comparable, numberT), types.Apply(b.Comparable, intT), false},
		{"invariant", types.Apply(box, numberT), types.Apply(box, intT), false},
		{"invariant same", types.Apply(box, intT), types.Apply(box, intT), true},
		{"through an interface", types.Apply(b.Comparable, intT), intT, true},
		{"wrong interface argument", types.Apply(b.Comparable, longT), intT, false},
		{"raw", b.Type(b.List), types.Apply(b.List, intT), true},
		{"null into a reference", b.Type(b.String), types.Null, true},
		{"null into a primitive", intT, types.Null, false},
		{"unknown", intT, types.Unknown, true},
		{"unknown reversed", types.Unknown, b.Type(b.String), true},
	} {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, types.IsSuperType(test.super, test.sub))
		})
	}
}

func TestLeastUpperBound(t *testing.T) {
	b := builtins()
	intT, longT := b.Type(b.Int), b.Type(b.Long)

	assert.True(t, types.Equal(b.Type(b.Number), types.LeastUpperBound(intT, longT)))
	assert.True(t, types.Equal(intT, types.LeastUpperBound(intT, intT)))
	assert.Equal(t, types.Unknown, types.LeastUpperBound(intT, types.Unknown))
}

func TestSubstitute(t *testing.T) {
	b := builtins()
	elem := b.List.TypeParams[0]
	listOfT := b.List.ThisType()

	substituted, ok := types.Substitute(listOfT, types.NewTypeContext())
	assert.False(t, ok, "T is still free")
	assert.Same(t, listOfT, substituted)

	ctx := types.NewTypeContext()
	require.True(t, ctx.Set(elem, b.Type(b.Int)))
	assert.False(t, ctx.Set(elem, b.Type(b.Long)), "a mapped parameter is never remapped")

	substituted, ok = types.Substitute(listOfT, ctx)
	assert.True(t, ok)
	assert.Equal(t, "List<Int>", substituted.TypeName())

	assert.Equal(t, "List<Any>", types.SubstituteOrDefault(listOfT, types.NewTypeContext()).TypeName())
}

func TestInferThroughSuperTypes(t *testing.T) {
	b := builtins()
	p := types.NewTypeParameter("E", types.Invariant, 0)
	p.Bind(nil, nil, b.Any)

	ctx := types.NewTypeContext()
	types.Infer(types.Apply(b.Comparable, p.Var()), b.Type(b.Int), types.InferableFrom([]*types.TypeParameter{p}), ctx)

	inferred, ok := ctx.Get(p)
	require.True(t, ok)
	assert.True(t, types.Equal(b.Type(b.Int), inferred))
	assert.Empty(t, ctx.Missing([]*types.TypeParameter{p}))
}

func TestBind(t *testing.T) {
	b := builtins()

	p := types.NewTypeParameter("T", types.Invariant, 0)
	problems := p.Bind([]types.Type{b.Type(b.Number), b.Type(b.String)}, nil, b.Any)
	require.Len(t, problems, 1)
	assert.Equal(t, 1, problems[0].Index)
	assert.Same(t, b.Number, p.Erasure())
	assert.IsType(t, &types.IntersectionType{}, p.DefaultType())
	assert.Panics(t, func() { p.Bind(nil, nil, b.Any) })

	unbounded := types.NewTypeParameter("U", types.Covariant, 0)
	assert.Empty(t, unbounded.Bind(nil, nil, b.Any))
	assert.Same(t, b.Any, unbounded.Erasure())
	assert.Equal(t, "+U", unbounded.String())
}

func TestAcceptsSelfReferentialBound(t *testing.T) {
	b := builtins()
	p := types.NewTypeParameter("T", types.Invariant, 0)
	p.Bind([]types.Type{types.Apply(b.Comparable, p.Var())}, nil, b.Any)

	ctx := types.NewTypeContext()
	ctx.Set(p, b.Type(b.Int))
	assert.True(t, p.Accepts(b.Type(b.Int), ctx))

	ctx = types.NewTypeContext()
	ctx.Set(p, b.Type(b.Boolean))
	assert.False(t, p.Accepts(b.Type(b.Boolean), ctx))
}

func TestDescriptors(t *testing.T) {
	b := builtins()
	m := &types.Method{
		Name:   "mix",
		Params: []*types.Parameter{{Name: "a", Type: b.Type(b.Int)}, {Name: "b", Type: b.Type(b.Long)}},
		Return: b.Type(b.Double),
	}

	assert.Equal(t, "(IJ)D", m.Descriptor())
	assert.Equal(t, "mix(a: Int, b: Long)", m.Signature())
	assert.Equal(t, "Lkiln/lang/String;", types.Descriptor(b.Type(b.String)))
	assert.Equal(t, "V", types.Descriptor(types.Void))
	assert.Equal(t, "Lkiln/lang/Any;", types.Descriptor(b.List.TypeParams[0].Var()))
}

func TestConversions(t *testing.T) {
	b := builtins()

	conv := types.FindConversion(b.Type(b.Short), b.Type(b.Long))
	require.NotNil(t, conv)
	assert.Equal(t, "s2l", conv.Intrinsic)
	assert.Nil(t, types.FindConversion(b.Type(b.Long), b.Type(b.Int)), "no narrowing conversions")
	assert.Len(t, b.Byte.Conversions(), 4)
}

func TestVarianceComposition(t *testing.T) {
	assert.Equal(t, types.Contravariant, types.Covariant.Compose(types.Contravariant))
	assert.Equal(t, types.Covariant, types.Contravariant.Compose(types.Contravariant))
	assert.Equal(t, types.Invariant, types.Invariant.Compose(types.Covariant))
	assert.True(t, types.Covariant.Allows(types.Covariant))
	assert.False(t, types.Covariant.Allows(types.Contravariant))

	b := builtins()
	elem := b.List.TypeParams[0]
	var seen []types.Variance
	fn := types.Apply(b.Function(1), elem.Var(), b.Type(b.Int))
	types.WalkVariance(fn, types.Contravariant, func(p *types.TypeParameter, v types.Variance) {
		if p == elem {
			seen = append(seen, v)
		}
	})
	require.Len(t, seen, 1)
	assert.Equal(t, types.Covariant, seen[0], "a function parameter in a parameter position")
}
