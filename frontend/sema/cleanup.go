package sema

import (
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/capture"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
)

// Cleanup replaces the lambdas that only forward their parameters to a
// static method by a reference to that method, and freezes every capture
// table. Nothing can be captured after Cleanup.
func (c *Checker) Cleanup() {
	var refs, tables int
	rewrite := func(e ast.Expr) ast.Expr {
		l, ok := e.(*ast.Lambda)
		if !ok {
			return e
		}
		if l.Captures != nil && !l.Captures.Frozen() {
			l.Captures.Freeze()
			tables++
		}
		if ref := methodRef(l); ref != nil {
			refs++
			return ref
		}
		return e
	}
	c.walkBodies(bodies{
		field: func(_ scope.Context, decl *ast.FieldDecl) {
			decl.Init = ast.Rewrite(decl.Init, rewrite)
		},
		method: func(_ scope.Context, decl *ast.MethodDecl) {
			rewriteBlock(decl.Body, rewrite)
		},
		constructor: func(_ scope.Context, _ *ast.ClassDecl, decl *ast.ConstructorDecl) {
			rewriteBlock(decl.Body, rewrite)
		},
	})
	c.logger.Debug("cleaned up", "methodRefs", refs, "frozenTables", tables)
}

func rewriteBlock(b *ast.Block, f func(ast.Expr) ast.Expr) {
	if b != nil {
		ast.Rewrite(b, f)
	}
}

// methodRef returns the reference to the static method l forwards to, nil if
// l does anything else
func methodRef(l *ast.Lambda) *ast.MethodRef {
	if l.SAM == nil || !capturesNothing(l.Captures) || types.IsUnknown(l.Type()) {
		return nil
	}
	call, ok := l.Body.(*ast.MethodCall)
	if !ok || call.Invoke || call.Method == nil || !call.Method.IsStatic() || call.Method.Intrinsic != "" {
		return nil
	}
	if call.Receiver != nil {
		if _, static := call.Receiver.(*ast.ClassAccess); !static {
			return nil
		}
	}
	if len(call.Args) != len(l.Params) {
		return nil
	}
	for i, arg := range call.Args {
		access, ok := arg.Value.(*ast.FieldAccess)
		if !ok || arg.Label != "" || access.Receiver != nil || access.Member != l.Params[i].Variable {
			return nil
		}
	}
	ref := &ast.MethodRef{Method: call.Method, SAM: l.SAM}
	ref.Range = l.Range
	ref.SetType(l.Type())
	return ref
}

func capturesNothing(t *capture.Table) bool {
	return t == nil || t.Empty()
}
