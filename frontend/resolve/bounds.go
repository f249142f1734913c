package resolve

import (
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
)

// CheckBounds reports, once per argument, the type arguments that do not
// satisfy the bounds of their parameter. The arguments are kept as they are.
// Parameters whose bounds are not bound yet are not checked.
func CheckBounds(params []*types.TypeParameter, args []types.Type, at []ast.Positioner, sink *diag.Sink) bool {
	ctx := types.NewTypeContext()
	for i, p := range params {
		if i < len(args) {
			ctx.Set(p, args[i])
		}
	}
	ok := true
	for i, p := range params {
		if i >= len(args) || !p.IsBound() || p.Accepts(args[i], ctx) {
			continue
		}
		ok = false
		var pos ast.Positioner = ast.Range{}
		if i < len(at) && at[i] != nil {
			pos = at[i]
		}
		sink.Add(diag.NewBoundViolation{Range: ast.RangeOf(pos), Param: p, Arg: args[i]})
	}
	return ok
}

// BindBounds resolves the bounds written on decl and binds them to its type
// parameter. ctx must already see the parameter, as bounds may mention it.
// Binding an already bound parameter does nothing.
func BindBounds(ctx scope.Context, decl *ast.TypeParamDecl, sink *diag.Sink) {
	if decl.Param == nil || decl.Param.IsBound() {
		return
	}
	upper := make([]types.Type, len(decl.UpperBounds))
	for i, ref := range decl.UpperBounds {
		upper[i] = Type(ctx, ref, sink)
	}
	var lower types.Type
	if decl.LowerBound != nil {
		lower = Type(ctx, decl.LowerBound, sink)
	}
	problems := decl.Param.Bind(upper, lower, ctx.Universe().Builtins().Top())
	for _, problem := range problems {
		sink.Add(diag.NewInvalidBound{
			Range:  ast.RangeOf(decl.UpperBounds[problem.Index]),
			Param:  decl.Name,
			Reason: problem.Reason,
		})
	}
	logger.Debug("bound type parameter", "param", decl.Param.String(), "owner", decl.Param.Owner)
}
