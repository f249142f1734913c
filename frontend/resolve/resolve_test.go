package resolve

import (
	"testing"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	u      *universe.Universe
	b      *universe.Builtins
	header *types.Class
	ctx    *scope.Header
}

func newFixture(t *testing.T) *fixture {
	u := universe.New()
	b := u.Builtins()
	header := &types.Class{Name: "TestKt", Kind: types.KindClass, Header: true, SuperType: b.Type(b.Any)}
	require.NoError(t, u.Package("test").Add(header))
	return &fixture{u: u, b: b, header: header, ctx: scope.NewHeader(scope.NewGlobal(u), header)}
}

func (f *fixture) function(name string, ret types.Type, params ...types.Type) *types.Method {
	ps := make([]*types.Parameter, len(params))
	for i, p := range params {
		ps[i] = &types.Parameter{Name: "p", Type: p}
	}
	return f.header.AddMethod(&types.Method{Name: name, Params: ps, Return: ret, Modifiers: types.Static})
}

func (f *fixture) sorted(t *testing.T) *types.Class {
	sorted := &types.Class{Name: "Sorted", Kind: types.KindClass, SuperType: f.b.Type(f.b.Any)}
	p := types.NewTypeParameter("T", types.Invariant, 0)
	p.Owner = "test.Sorted"
	sorted.TypeParams = []*types.TypeParameter{p}
	require.Empty(t, p.Bind([]types.Type{types.Apply(f.b.Comparable, p.Var())}, nil, f.b.Any))
	require.NoError(t, f.u.Package("test").Add(sorted))
	f.ctx.Declare(sorted)
	return sorted
}

func args(ts ...types.Type) match.Arguments {
	arguments := make(match.Arguments, len(ts))
	for i, t := range ts {
		arguments[i] = match.Typed(t)
	}
	return arguments
}

func TestTypeResolvesNamesAndArguments(t *testing.T) {
	f := newFixture(t)
	sink := diag.NewSink()

	ref := ast.Named("List", ast.Named("String"))
	resolved := Type(f.ctx, ref, sink)
	assert.True(t, types.Equal(types.Apply(f.b.List, f.b.Type(f.b.String)), resolved))
	assert.Same(t, resolved, ref.Resolved())
	assert.Zero(t, sink.Len())

	fn := &ast.FunctionTypeRef{Params: []ast.TypeRef{ast.Named("Int")}, Return: ast.Named("Boolean")}
	resolved = Type(f.ctx, fn, sink)
	assert.True(t, types.Equal(types.Apply(f.b.Function(1), f.b.Type(f.b.Int), f.b.Type(f.b.Boolean)), resolved))
	assert.Zero(t, sink.Len())
}

func TestTypeReportsProblems(t *testing.T) {
	tests := map[string]struct {
		ref  ast.TypeRef
		code diag.Code
	}{
		"unknown class":         {ast.Named("Missing"), diag.UnresolvedType},
		"unknown argument":      {ast.Named("List", ast.Named("Missing")), diag.UnresolvedType},
		"too many arguments":    {ast.Named("List", ast.Named("Int"), ast.Named("Int")), diag.TypeArgumentCount},
		"function too large":    {&ast.FunctionTypeRef{Params: []ast.TypeRef{ast.Named("Int"), ast.Named("Int"), ast.Named("Int")}, Return: ast.Named("Int")}, diag.UnresolvedType},
		"bound not implemented": {ast.Named("Sorted", ast.Named("Boolean")), diag.BoundViolation},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.sorted(t)
			sink := diag.NewSink()
			Type(f.ctx, test.ref, sink)
			require.Equal(t, 1, sink.Len(), "diagnostics: %v", sink.All())
			assert.Equal(t, test.code, sink.All()[0].Code())
		})
	}
}

func TestBoundViolationKeepsTheArgument(t *testing.T) {
	f := newFixture(t)
	sorted := f.sorted(t)
	sink := diag.NewSink()

	ref := ast.Named("Sorted", ast.Named("Boolean"))
	resolved := Type(f.ctx, ref, sink)
	require.Len(t, sink.WithCode(diag.BoundViolation), 1)
	assert.True(t, types.Equal(types.Apply(sorted, f.b.Type(f.b.Boolean)), resolved))

	// resolving again reuses the cached type and reports nothing new
	again := Type(f.ctx, ref, sink)
	assert.Same(t, resolved, again)
	assert.Equal(t, 1, sink.Len())

	Type(f.ctx, ast.Named("Sorted", ast.Named("Int")), sink)
	assert.Equal(t, 1, sink.Len())
}

func TestBindBounds(t *testing.T) {
	f := newFixture(t)
	box := &types.Class{Name: "Box", Kind: types.KindClass, SuperType: f.b.Type(f.b.Any)}
	p := types.NewTypeParameter("T", types.Invariant, 0)
	box.TypeParams = []*types.TypeParameter{p}
	ctx := scope.NewClass(f.ctx, box)

	decl := &ast.TypeParamDecl{
		Name:        "T",
		UpperBounds: []ast.TypeRef{ast.Named("Number"), ast.Named("String"), ast.Named("Comparable", ast.Named("T"))},
		Param:       p,
	}
	sink := diag.NewSink()
	BindBounds(ctx, decl, sink)
	require.True(t, p.IsBound())
	assert.Equal(t, f.b.Number, p.Erasure())
	require.Len(t, sink.WithCode(diag.InvalidBound), 1)
	assert.Len(t, p.UpperBounds, 3)

	// binding twice is a no-op
	BindBounds(ctx, decl, sink)
	assert.Equal(t, 1, sink.Len())
}

func TestExactMatchBeatsSupertype(t *testing.T) {
	f := newFixture(t)
	exact := f.function("f", types.Void, f.b.Type(f.b.Int))
	f.function("f", types.Void, f.b.Type(f.b.Any))

	best, set := Method(f.ctx, match.Request{Name: "f", Args: args(f.b.Type(f.b.Int))})
	require.NotNil(t, best)
	assert.Equal(t, exact, best.Member)
	assert.Equal(t, 2, set.Len())

	best, _ = Method(f.ctx, match.Request{Name: "f", Args: args(f.b.Type(f.b.String))})
	require.NotNil(t, best)
	assert.Equal(t, "f(p: Any)", best.Member.Signature())
}

func TestEqualConversionsAreAmbiguous(t *testing.T) {
	f := newFixture(t)
	toInt := f.function("f", types.Void, f.b.Type(f.b.Int))
	f.function("f", types.Void, f.b.Type(f.b.Long))
	byteArg := args(f.b.Type(f.b.Byte))

	best, set := Method(f.ctx, match.Request{Name: "f", Args: byteArg})
	assert.Nil(t, best)
	_, outcome := set.Best()
	assert.Equal(t, match.Ambiguous, outcome)
	assert.Len(t, set.Maximal(), 2)

	best, _ = Method(f.ctx, match.Request{Name: "f", Args: byteArg, Policy: match.TieFirstWins})
	require.NotNil(t, best)
	assert.Equal(t, toInt, best.Member)
	assert.Equal(t, match.Conversion, best.Qualities[0])
	assert.Equal(t, "b2i", best.Conversions[0].Name)
}

func TestReceiverMethodsAreSeenThroughTheReceiver(t *testing.T) {
	f := newFixture(t)
	intT := f.b.Type(f.b.Int)

	best, _ := Method(f.ctx, match.Request{Name: "compareTo", Receiver: intT, Args: args(intT)})
	require.NotNil(t, best)
	assert.Equal(t, f.b.Int, best.Member.OwnerClass())

	listOfString := types.Apply(f.b.List, f.b.Type(f.b.String))
	best, _ = Method(f.ctx, match.Request{Name: "get", Receiver: listOfString, Args: args(intT)})
	require.NotNil(t, best)
	assert.True(t, types.Equal(f.b.Type(f.b.String), best.ReturnType()))

	best, set := Method(f.ctx, match.Request{Name: "of", Receiver: listOfString, Args: args(intT)})
	assert.Nil(t, best)
	assert.Zero(t, set.Len())
}

func TestStaticMethodInfersItsTypeParameters(t *testing.T) {
	f := newFixture(t)
	best, _ := StaticMethod(f.b.List, match.Request{Name: "of", Args: args(f.b.Type(f.b.Int), f.b.Type(f.b.Int))})
	require.NotNil(t, best)
	assert.True(t, types.Equal(types.Apply(f.b.List, f.b.Type(f.b.Int)), best.ReturnType()))
}

func TestFieldsOfGenericReceivers(t *testing.T) {
	f := newFixture(t)
	box := &types.Class{Name: "Box", Kind: types.KindClass, SuperType: f.b.Type(f.b.Any)}
	p := types.NewTypeParameter("T", types.Invariant, 0)
	p.Bind(nil, nil, f.b.Any)
	box.TypeParams = []*types.TypeParameter{p}
	value := box.AddField(&types.Field{Name: "value", Type: p.Var()})

	intBox := &types.Class{Name: "IntBox", Kind: types.KindClass, SuperType: types.Apply(box, f.b.Type(f.b.Int))}

	field, ft := Field(types.Apply(box, f.b.Type(f.b.String)), "value")
	assert.Equal(t, value, field)
	assert.True(t, types.Equal(f.b.Type(f.b.String), ft))

	field, ft = Field(intBox.ThisType(), "value")
	assert.Equal(t, value, field)
	assert.True(t, types.Equal(f.b.Type(f.b.Int), ft))
	assert.True(t, types.Equal(f.b.Type(f.b.Int), MemberType(value, intBox.ThisType())))

	field, _ = Field(intBox.ThisType(), "missing")
	assert.Nil(t, field)
}

func TestInferLambdaTargetNarrowsOnlyUnboundSlots(t *testing.T) {
	f := newFixture(t)
	listOfInt := types.Apply(f.b.List, f.b.Type(f.b.Int))
	req := match.Request{Name: "map", Receiver: listOfInt, Args: match.Arguments{match.ImplicitLambda("", 1)}}

	best, _ := Method(f.ctx, req)
	require.NotNil(t, best)
	target, ok := InferLambdaTarget(best.ParamFor(0).Type, best.Context, best.Member.TypeParameters())
	require.True(t, ok)
	require.Len(t, target.Params, 1)
	assert.True(t, types.Equal(f.b.Type(f.b.Int), target.Params[0]))
	assert.Nil(t, target.ExpectedReturn())

	target.Narrow(f.b.Type(f.b.String))
	assert.True(t, types.Equal(f.b.Type(f.b.String), target.ReturnType()))
	assert.True(t, types.Equal(types.Apply(f.b.List, f.b.Type(f.b.String)), best.ReturnType()))

	// a bound slot is never revisited
	target.Narrow(f.b.Type(f.b.Double))
	assert.True(t, types.Equal(f.b.Type(f.b.String), target.ReturnType()))
}

func TestFunctionalSignature(t *testing.T) {
	f := newFixture(t)
	fn := types.Apply(f.b.Function(2), f.b.Type(f.b.Int), f.b.Type(f.b.Long), f.b.Type(f.b.String))
	sig, ok := Functional(fn)
	require.True(t, ok)
	assert.Equal(t, "apply", sig.Method.Name)
	assert.True(t, types.Equal(f.b.Type(f.b.Long), sig.Params[1]))
	assert.True(t, types.Equal(f.b.Type(f.b.String), sig.Return))
	assert.Equal(t, 2, Arity(fn))

	assert.Equal(t, -1, Arity(f.b.Type(f.b.Int)))
}
