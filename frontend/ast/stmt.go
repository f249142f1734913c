package ast

import "github.com/cottand/kiln/frontend/types"

var (
	_ Stmt = (*VarDecl)(nil)
	_ Stmt = (*ExprStmt)(nil)
	_ Stmt = (*Return)(nil)
)

func (*VarDecl) stmtNode()  {}
func (*ExprStmt) stmtNode() {}
func (*Return) stmtNode()   {}

func (*VarDecl) Describe() string  { return "variable declaration" }
func (*ExprStmt) Describe() string { return "expression statement" }
func (*Return) Describe() string   { return "return" }

type VarDecl struct {
	Range
	Name  string
	Final bool
	// Type may be omitted when Init is given
	Type TypeRef
	Init Expr

	Variable *types.Variable
}

type ExprStmt struct {
	Range
	Expr Expr
}

type Return struct {
	Range
	// Value is nil in methods returning nothing
	Value Expr
}
