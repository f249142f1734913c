// Package ast is the closed set of nodes a unit is made of.
//
// Nodes start out syntax-only, as produced by the decoder, and are filled in
// by the compilation phases: declarations get their resolved types.Class or
// member, type references their types.Type, expressions their type and
// resolved member. Those caches are set once and never contradicted by a
// later phase.
package ast

import "github.com/cottand/kiln/frontend/types"

// Node is the base interface for all AST nodes.
type Node interface {
	Positioner
	// Describe names the kind of node for diagnostics and logs
	Describe() string
}

// Expr is the interface for all expression nodes in the AST.
type Expr interface {
	Node
	// Type is the type computed by checkTypes, nil until then
	Type() types.Type
	SetType(types.Type)
	exprNode()
}

// Stmt is the interface for all statement nodes in the AST.
type Stmt interface {
	Node
	stmtNode()
}

// TypeRef is a type as written in the source.
type TypeRef interface {
	Node
	// Resolved is the type this reference resolved to, nil until resolveTypes
	Resolved() types.Type
	SetResolved(types.Type)
	typeRefNode()
}

// Pattern is the left side of a case in a Match.
type Pattern interface {
	Node
	patternNode()
}

type exprBase struct {
	Range
	typ types.Type
}

func (e *exprBase) Type() types.Type     { return e.typ }
func (e *exprBase) SetType(t types.Type) { e.typ = t }
func (*exprBase) exprNode()              {}

type typeRefBase struct {
	Range
	resolved types.Type
}

func (t *typeRefBase) Resolved() types.Type     { return t.resolved }
func (t *typeRefBase) SetResolved(r types.Type) { t.resolved = r }
func (*typeRefBase) typeRefNode()               {}

// ResolvedOr returns the type ref resolved to, or def when ref is nil or not resolved
func ResolvedOr(ref TypeRef, def types.Type) types.Type {
	if ref == nil || ref.Resolved() == nil {
		return def
	}
	return ref.Resolved()
}

// TypeOf returns the type of e, Unknown if it is not computed yet
func TypeOf(e Expr) types.Type {
	if e == nil || e.Type() == nil {
		return types.Unknown
	}
	return e.Type()
}
