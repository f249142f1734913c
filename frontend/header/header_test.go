package header

import (
	"context"
	"testing"

	"github.com/cottand/kiln/frontend"
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func name(n string) *ast.FieldAccess { return &ast.FieldAccess{Name: n} }

func call(receiver ast.Expr, method string, args ...ast.Expr) *ast.MethodCall {
	arguments := make([]*ast.Argument, len(args))
	for i, arg := range args {
		arguments[i] = &ast.Argument{Value: arg}
	}
	return &ast.MethodCall{Receiver: receiver, Name: method, Args: arguments, Applied: true}
}

func function(n string, result ast.TypeRef, params []*ast.ParamDecl, body ast.Expr) *ast.MethodDecl {
	return &ast.MethodDecl{Name: n, Return: result, Params: params, Body: &ast.Block{Stmts: []ast.Stmt{&ast.Return{Value: body}}}}
}

// library declares
//
//	class Box<out T>(val value: T) { fun get(): T = value }
//	fun wrap(s: String): Box<String> = Box(s)
//	val LIMIT: Int = 10
//	private fun secret(): Int = LIMIT
func library() *ast.Unit {
	return &ast.Unit{
		Package: "lib",
		Name:    "Lib",
		Classes: []*ast.ClassDecl{{
			Name:       "Box",
			TypeParams: []*ast.TypeParamDecl{{Name: "T", Variance: types.Covariant}},
			Fields:     []*ast.FieldDecl{{Name: "value", Modifiers: types.Final, Type: ast.Named("T")}},
			Methods:    []*ast.MethodDecl{function("get", ast.Named("T"), nil, name("value"))},
		}},
		Functions: []*ast.MethodDecl{
			function("wrap", ast.Named("Box", ast.Named("String")), []*ast.ParamDecl{{Name: "s", Type: ast.Named("String")}}, call(nil, "Box", name("s"))),
			{Name: "secret", Modifiers: types.Private, Return: ast.Named("Int"), Body: &ast.Block{Stmts: []ast.Stmt{&ast.Return{Value: name("LIMIT")}}}},
		},
		Fields: []*ast.FieldDecl{{Name: "LIMIT", Modifiers: types.Final, Type: ast.Named("Int"), Init: &ast.Literal{Kind: ast.LitInt, Value: int64(10)}}},
	}
}

func compiled(t *testing.T, unit *ast.Unit, u *universe.Universe) {
	t.Helper()
	res, err := frontend.Compile(unit, u, frontend.Options{})
	require.NoError(t, err)
	require.Zero(t, res.Diagnostics.Len(), "%v", res.Diagnostics.All())
}

func TestFromUnit(t *testing.T) {
	lib := library()
	compiled(t, lib, universe.New())

	h, err := FromUnit(lib)
	require.NoError(t, err)
	assert.Equal(t, "lib", h.Package)
	assert.Equal(t, "Lib", h.Unit)
	require.Len(t, h.Classes, 2)

	kt := h.Classes[0]
	assert.Equal(t, "LibKt", kt.Name)
	assert.True(t, kt.Header)
	require.Len(t, kt.Methods, 1, "private functions are not exported")
	assert.Equal(t, "wrap", kt.Methods[0].Name)
	assert.Equal(t, "lib.Box<kiln.lang.String>", kt.Methods[0].Returns)
	require.Len(t, kt.Fields, 1)
	assert.Equal(t, &Field{Name: "LIMIT", Type: "kiln.lang.Int", Modifiers: "static final", Constant: int64(10)}, kt.Fields[0])

	box := h.Classes[1]
	assert.Equal(t, "Box", box.Name)
	assert.Equal(t, "class", box.Kind)
	assert.Equal(t, []*TypeParam{{Name: "T", Variance: "covariant"}}, box.TypeParams)
	assert.Equal(t, "kiln.lang.Any", box.Extends)
	require.Len(t, box.Constructors, 1)
	assert.True(t, box.Constructors[0].Synthetic)
	assert.Equal(t, []*Param{{Name: "value", Type: "T"}}, box.Constructors[0].Params)
}

func TestFromUnitRefusesUnresolvedTypes(t *testing.T) {
	unit := &ast.Unit{Package: "lib", Name: "Broken", Functions: []*ast.MethodDecl{
		function("f", ast.Named("Missing"), nil, &ast.Literal{Kind: ast.LitNull}),
	}}
	res, err := frontend.Compile(unit, universe.New(), frontend.Options{})
	require.NoError(t, err)
	require.True(t, res.Diagnostics.HasError())

	_, err = FromUnit(unit)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BrokenKt.f has an unresolved type")
}

func TestInstalledHeaderCompilesClients(t *testing.T) {
	lib := library()
	compiled(t, lib, universe.New())
	exported, err := FromUnit(lib)
	require.NoError(t, err)
	data, err := exported.Marshal()
	require.NoError(t, err)
	h, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, exported.ID, h.ID)

	u := universe.New()
	classes, err := Install(u, h)
	require.NoError(t, err)
	require.Len(t, classes, 2)

	box, ok := u.ResolveClass("lib.Box")
	require.True(t, ok)
	require.Len(t, box.TypeParams, 1)
	assert.True(t, box.TypeParams[0].IsBound())
	assert.Equal(t, types.Covariant, box.TypeParams[0].Variance)
	value := box.OwnField("value")
	require.NotNil(t, value)
	assert.Same(t, box.TypeParams[0], value.Type.(*types.TypeVar).Param)

	kt := classes[0]
	limit := kt.OwnField("LIMIT")
	require.NotNil(t, limit)
	assert.Equal(t, int64(10), limit.Constant)
	wrap := kt.OwnMethods("wrap")
	require.Len(t, wrap, 1)
	assert.Equal(t, "Box<String>", wrap[0].Return.TypeName())

	client := &ast.Unit{
		Package: "app",
		Name:    "Main",
		Imports: []*ast.Import{{Path: "lib.Box"}},
		Functions: []*ast.MethodDecl{
			function("unwrap", ast.Named("String"), []*ast.ParamDecl{{Name: "b", Type: ast.Named("Box", ast.Named("String"))}}, call(name("b"), "get")),
		},
	}
	compiled(t, client, u)

	_, err = Install(u, h)
	assert.ErrorContains(t, err, "already declared")
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	lib := library()
	compiled(t, lib, universe.New())
	h, err := FromUnit(lib)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, h))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, h.ID, entries[0].ID)
	assert.Equal(t, "lib", entries[0].Package)

	loaded, err := store.Find(ctx, "lib", "Lib")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, h.ID, loaded.ID)
	assert.Len(t, loaded.Classes, 2)

	// a newer header of the same unit replaces the old one
	again, err := FromUnit(lib)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, again))
	entries, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, again.ID, entries[0].ID)

	old, err := store.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Nil(t, old)

	u := universe.New()
	n, err := store.InstallAll(ctx, func(h *Header) error {
		_, err := Install(u, h)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok := u.ResolveClass("lib.Box")
	assert.True(t, ok)

	deleted, err := store.Delete(ctx, again.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	missing, err := store.Find(ctx, "lib", "Lib")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
