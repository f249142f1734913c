package scope

import (
	"testing"

	"github.com/cottand/kiln/frontend/capture"
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChain(t *testing.T) (*universe.Universe, *Header, *types.Class) {
	u := universe.New()
	b := u.Builtins()
	header := &types.Class{Name: "MainKt", Package: "app", Kind: types.KindClass, Header: true, SuperType: b.Type(b.Any)}
	require.NoError(t, u.Package("app").Add(header))
	h := NewHeader(NewGlobal(u), header)

	class := &types.Class{Name: "Counter", Package: "app", Kind: types.KindClass, SuperType: b.Type(b.Any)}
	require.NoError(t, u.Package("app").Add(class))
	class.AddField(&types.Field{Name: "count", Type: b.Type(b.Int)})
	h.Declare(class)
	return u, h, class
}

func TestGlobalResolvesBuiltins(t *testing.T) {
	u := universe.New()
	g := NewGlobal(u)
	assert.Equal(t, u.Builtins().Int, g.ResolveClass("Int"))
	assert.Equal(t, u.Builtins().List, g.ResolveClass("kiln.lang.List"))
	assert.Nil(t, g.ResolveClass("Nope"))
	assert.True(t, g.IsStatic())
}

func TestHeaderResolvesOwnClassesFirst(t *testing.T) {
	u, h, class := testChain(t)
	shadow := &types.Class{Name: "Int", Package: "app", Kind: types.KindClass}
	h.Declare(shadow)

	assert.Equal(t, shadow, h.ResolveClass("Int"))
	assert.Equal(t, class, h.ResolveClass("Counter"))
	assert.Equal(t, u.Builtins().String, h.ResolveClass("String"))
}

func TestImports(t *testing.T) {
	u, h, _ := testChain(t)
	lib := u.Package("lib")
	widget := &types.Class{Name: "Widget", Kind: types.KindClass}
	gadget := &types.Class{Name: "Gadget", Kind: types.KindClass}
	require.NoError(t, lib.Add(widget))
	require.NoError(t, lib.Add(gadget))

	h.Import("W", widget)
	h.ImportAll(lib)
	assert.Equal(t, widget, h.ResolveClass("W"))
	assert.Equal(t, gadget, h.ResolveClass("Gadget"))
}

func TestInnerDeclarationsShadowOuterOnes(t *testing.T) {
	u, h, class := testChain(t)
	b := u.Builtins()
	classCtx := NewClass(h, class)
	assert.Equal(t, class.Fields[0], classCtx.ResolveField("count"))

	m := class.AddMethod(&types.Method{Name: "run", Return: types.Void})
	param := &types.Variable{Name: "count", Type: b.Type(b.Long), Kind: types.VarParameter}
	methodCtx := NewMethod(classCtx, m, []*types.Variable{param})
	assert.Equal(t, param, methodCtx.ResolveField("count"))

	local := &types.Variable{Name: "count", Type: b.Type(b.String)}
	block := NewBlock(methodCtx)
	inner := block.With(local)
	assert.Equal(t, local, inner.ResolveField("count"))
	// the block the variable was declared into is left alone
	assert.Equal(t, param, block.ResolveField("count"))
	assert.Nil(t, inner.ResolveField("missing"))
}

func TestStaticContexts(t *testing.T) {
	_, h, class := testChain(t)
	classCtx := NewClass(h, class)

	static := NewMethod(classCtx, &types.Method{Name: "make", Modifiers: types.Static}, nil)
	assert.True(t, static.IsStatic())
	assert.Nil(t, ThisType(static))
	_, ok := static.CaptureThis()
	assert.False(t, ok)

	instance := NewMethod(classCtx, &types.Method{Name: "get"}, nil)
	assert.False(t, instance.IsStatic())
	assert.Equal(t, class.ThisType(), ThisType(instance))

	topLevel := NewMethod(h, &types.Method{Name: "main"}, nil)
	assert.True(t, topLevel.IsStatic())
}

func TestResolveTypePrefersTypeParameters(t *testing.T) {
	u, h, _ := testChain(t)
	box := &types.Class{Name: "Box", Package: "app", Kind: types.KindClass}
	param := types.NewTypeParameter("String", types.Invariant, 0)
	param.Bind(nil, nil, u.Builtins().Any)
	box.TypeParams = []*types.TypeParameter{param}

	ctx := NewClass(h, box)
	resolved, ok := ResolveType(ctx, "String")
	require.True(t, ok)
	assert.True(t, types.Equal(param.Var(), resolved))

	_, ok = ResolveType(ctx, "Missing")
	assert.False(t, ok)
}

func TestLambdaCapturesOuterBindingsOnce(t *testing.T) {
	u, h, _ := testChain(t)
	b := u.Builtins()
	n := &types.Variable{Name: "n", Type: b.Type(b.Int), Kind: types.VarParameter}
	fn := NewMethod(h, &types.Method{Name: "adder", Modifiers: types.Static}, []*types.Variable{n})

	x := &types.Variable{Name: "x", Type: b.Type(b.Int), Kind: types.VarParameter}
	table := capture.NewTable()
	lambda := NewLambda(NewBlock(fn), []*types.Variable{x}, table, nil)

	own, ok := lambda.Capture(x)
	require.True(t, ok)
	assert.Equal(t, x, own)

	first, ok := lambda.Capture(n)
	require.True(t, ok)
	second, _ := lambda.Capture(n)
	assert.Same(t, first, second)
	assert.Equal(t, 1, table.Len())
	assert.True(t, n.Captured)
	assert.False(t, x.Captured)
}

func TestNestedLambdaCapturesThroughEnclosingLambda(t *testing.T) {
	u, h, class := testChain(t)
	b := u.Builtins()
	m := &types.Method{Name: "run"}
	v := &types.Variable{Name: "v", Type: b.Type(b.Int)}
	body := NewBlock(NewMethod(NewClass(h, class), m, nil)).With(v)

	outerTable, innerTable := capture.NewTable(), capture.NewTable()
	outer := NewLambda(body, nil, outerTable, nil)
	inner := NewLambda(outer, nil, innerTable, nil)

	captured, ok := inner.Capture(v)
	require.True(t, ok)
	slot := captured.(*capture.Slot)
	assert.Equal(t, v, capture.Root(slot))
	assert.Equal(t, 1, outerTable.Len())
	assert.Equal(t, 1, innerTable.Len())

	_, ok = inner.CaptureThis()
	require.True(t, ok)
	assert.True(t, innerTable.CapturesThis())
	assert.True(t, outerTable.CapturesThis())

	_, ok = inner.Capture(&types.Variable{Name: "stranger"})
	assert.False(t, ok)
}

func TestLambdaWithoutOuterReferencesCapturesNothing(t *testing.T) {
	u, h, _ := testChain(t)
	x := &types.Variable{Name: "x", Type: u.Builtins().Type(u.Builtins().Int)}
	table := capture.NewTable()
	lambda := NewLambda(NewMethod(h, &types.Method{Name: "f"}, nil), []*types.Variable{x}, table, nil)

	assert.Equal(t, x, lambda.ResolveField("x"))
	_, _ = lambda.Capture(x)
	assert.True(t, table.Empty())
}

func TestContributeMethodsStopsAtFirstApplicableScope(t *testing.T) {
	u, h, class := testChain(t)
	b := u.Builtins()
	header := h.Class()
	header.AddMethod(&types.Method{Name: "log", Params: []*types.Parameter{{Name: "x", Type: b.Type(b.Int)}}, Modifiers: types.Static})
	own := class.AddMethod(&types.Method{Name: "log", Params: []*types.Parameter{{Name: "x", Type: b.Type(b.Any)}}})

	set := match.NewCandidateSet(match.Request{Name: "log", Args: match.Arguments{match.Typed(b.Type(b.Int))}})
	NewClass(h, class).ContributeMethods(set, "log")
	require.Equal(t, 1, set.Len())
	best, outcome := set.Best()
	assert.Equal(t, match.Found, outcome)
	assert.Equal(t, own, best.Member)

	set = match.NewCandidateSet(match.Request{Name: "log", Args: match.Arguments{match.Typed(b.Type(b.String))}})
	NewClass(h, class).ContributeMethods(set, "log")
	best, outcome = set.Best()
	assert.Equal(t, match.Found, outcome)
	assert.Equal(t, own, best.Member)

	set = match.NewCandidateSet(match.Request{Name: "log", Args: match.Arguments{match.Typed(b.Type(b.Boolean)), match.Typed(b.Type(b.Int))}})
	NewClass(h, class).ContributeMethods(set, "log")
	assert.Equal(t, 2, set.Len())
	_, outcome = set.Best()
	assert.Equal(t, match.NotFound, outcome)
}

func TestLambdaPutsOuterMethodsOneScopeFurther(t *testing.T) {
	u, h, _ := testChain(t)
	b := u.Builtins()
	log := h.Class().AddMethod(&types.Method{Name: "log", Params: []*types.Parameter{{Name: "x", Type: b.Type(b.Int)}}, Modifiers: types.Static})

	set := match.NewCandidateSet(match.Request{Name: "log", Args: match.Arguments{match.Typed(b.Type(b.Int))}})
	NewLambda(h, nil, capture.NewTable(), nil).ContributeMethods(set, "log")
	require.Equal(t, 1, set.Len())
	assert.Same(t, log, set.All()[0].Member)
	assert.Equal(t, 1, set.All()[0].Scope)
}
