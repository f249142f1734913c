// Package resolve looks up what names in a unit refer to: types written in
// the source, the members of a type, and the candidates of a call.
//
// Every function here is a pure query over a scope.Context, except for the
// type caches set on ast.TypeRef and the diagnostics added to the given sink.
package resolve

import (
	"fmt"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/internal/log"
)

var logger = log.DefaultLogger.With("section", "resolve")

// Type resolves ref in ctx and caches the result on ref, so that resolving
// the same reference again neither changes its type nor reports twice.
// A nil ref is void. Parts that do not resolve become Unknown.
func Type(ctx scope.Context, ref ast.TypeRef, sink *diag.Sink) types.Type {
	if ref == nil {
		return types.Void
	}
	if resolved := ref.Resolved(); resolved != nil {
		return resolved
	}
	var t types.Type
	switch ref := ref.(type) {
	case *ast.NamedTypeRef:
		t = namedType(ctx, ref, sink)
	case *ast.FunctionTypeRef:
		t = functionType(ctx, ref, sink)
	default:
		diag.Fail("unexpected type reference %T", ref)
	}
	ref.SetResolved(t)
	return t
}

func namedType(ctx scope.Context, ref *ast.NamedTypeRef, sink *diag.Sink) types.Type {
	if len(ref.Args) == 0 {
		if p := ctx.ResolveTypeParameter(ref.Name); p != nil {
			return p.Var()
		}
	}
	args := make([]types.Type, len(ref.Args))
	for i, arg := range ref.Args {
		args[i] = Type(ctx, arg, sink)
	}
	c := ctx.ResolveClass(ref.Name)
	if c == nil {
		sink.Add(diag.NewUnresolvedType{Range: ast.RangeOf(ref), Name: ref.Name})
		return types.Unknown
	}
	if len(args) == 0 {
		return &types.ClassType{Class: c}
	}
	if len(args) != len(c.TypeParams) {
		sink.Add(diag.NewTypeArgumentCount{
			Range:    ast.RangeOf(ref),
			Name:     c.Name,
			Expected: len(c.TypeParams),
			Found:    len(args),
		})
		return types.Unknown
	}
	positions := make([]ast.Positioner, len(ref.Args))
	for i, arg := range ref.Args {
		positions[i] = arg
	}
	CheckBounds(c.TypeParams, args, positions, sink)
	return &types.GenericType{Class: c, Args: args}
}

func functionType(ctx scope.Context, ref *ast.FunctionTypeRef, sink *diag.Sink) types.Type {
	params := make([]types.Type, len(ref.Params))
	for i, p := range ref.Params {
		params[i] = Type(ctx, p, sink)
	}
	ret := Type(ctx, ref.Return, sink)
	fn, ok := ctx.Universe().Builtins().FunctionType(params, ret)
	if !ok {
		sink.Add(diag.NewUnresolvedType{Range: ast.RangeOf(ref), Name: fmt.Sprint("Function", len(params))})
	}
	return fn
}
