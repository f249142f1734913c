package ast

import (
	"github.com/cottand/kiln/frontend/capture"
	"github.com/cottand/kiln/frontend/types"
)

var (
	_ Expr = (*Literal)(nil)
	_ Expr = (*FieldAccess)(nil)
	_ Expr = (*ClassAccess)(nil)
	_ Expr = (*MethodCall)(nil)
	_ Expr = (*ConstructorCall)(nil)
	_ Expr = (*This)(nil)
	_ Expr = (*Assignment)(nil)
	_ Expr = (*Lambda)(nil)
	_ Expr = (*MethodRef)(nil)
	_ Expr = (*Block)(nil)
	_ Expr = (*If)(nil)
	_ Expr = (*Match)(nil)
	_ Expr = (*Cast)(nil)
	_ Expr = (*Conversion)(nil)
)

func (*Literal) Describe() string         { return "literal" }
func (*FieldAccess) Describe() string     { return "field access" }
func (*ClassAccess) Describe() string     { return "class reference" }
func (*ConstructorCall) Describe() string { return "constructor call" }
func (*This) Describe() string            { return "this" }
func (*Assignment) Describe() string      { return "assignment" }
func (*Lambda) Describe() string          { return "lambda" }
func (*MethodRef) Describe() string       { return "method reference" }
func (*Block) Describe() string           { return "block" }
func (*If) Describe() string              { return "if" }
func (*Match) Describe() string           { return "match" }
func (*Cast) Describe() string            { return "cast" }
func (*Conversion) Describe() string      { return "implicit conversion" }
func (*Argument) Describe() string        { return "argument" }
func (*Case) Describe() string            { return "case" }

func (c *MethodCall) Describe() string {
	if c.Applied {
		return "method call"
	}
	return "name"
}

type LiteralKind uint8

const (
	LitNull LiteralKind = iota
	LitInt
	LitLong
	LitDouble
	LitBool
	LitString
)

func (k LiteralKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitLong:
		return "long"
	case LitDouble:
		return "double"
	case LitBool:
		return "boolean"
	case LitString:
		return "string"
	default:
		return "null"
	}
}

// Literal is a constant. Value is an int64 for LitInt and LitLong, a float64
// for LitDouble, a bool or a string, and nil for LitNull.
type Literal struct {
	exprBase
	Kind  LiteralKind
	Value any
}

// FieldAccess reads a data member: a field, or a local variable when Receiver is nil
type FieldAccess struct {
	exprBase
	Receiver Expr
	Name     string

	// Member is set by resolve for unqualified names and by checkTypes otherwise
	Member types.DataMember
	// Capture is the slot of the enclosing lambda the member (or the
	// implicit `this` of an instance field) is read from, if any
	Capture *capture.Slot
}

// ClassAccess names a class, as the receiver of a static member access
type ClassAccess struct {
	exprBase
	Name  string
	Class *types.Class
}

// MethodCall is either a call, or a bare name when not Applied. Bare names
// are rewritten by resolve into the node they turn out to be.
type MethodCall struct {
	exprBase
	Receiver Expr
	Name     string
	TypeArgs []TypeRef
	Args     []*Argument
	Applied  bool
	// Invoke marks a call of a value of a functional interface type; its Name is
	// filled in by checkTypes with the name of the functional method
	Invoke bool

	Method *types.Method
	// Inferred maps the type parameters of Method and of its receiver type
	Inferred *types.TypeContext
	// ImplicitThis is set when Receiver is nil and Method is an instance method
	ImplicitThis bool
	Capture      *capture.Slot
}

type Argument struct {
	Range
	// Label is the parameter name a named argument is passed to
	Label string
	Value Expr
}

type ConstructorCall struct {
	exprBase
	Class *NamedTypeRef
	Args  []*Argument

	Constructor *types.Constructor
	Inferred    *types.TypeContext
}

type This struct {
	exprBase
	Class   *types.Class
	Capture *capture.Slot
}

type Assignment struct {
	exprBase
	Target Expr
	Value  Expr
}

type Lambda struct {
	exprBase
	Params []*ParamDecl
	Body   Expr

	// Captures is created by resolve and filled in by checkTypes
	Captures *capture.Table
	// SAM is the functional method the lambda implements, set by checkTypes
	SAM *types.Method
}

// Implicit reports whether some parameter types are left to be inferred
func (l *Lambda) Implicit() bool {
	for _, p := range l.Params {
		if p.Type == nil {
			return true
		}
	}
	return false
}

// MethodRef is a function value bound to an existing static method. It is
// only produced by cleanup, from lambdas forwarding their parameters.
type MethodRef struct {
	exprBase
	Method *types.Method
	SAM    *types.Method
}

// Block is a sequence of statements; its value is the value of its last
// statement when that is an ExprStmt
type Block struct {
	exprBase
	Stmts []Stmt
}

// Last returns the expression the value of b is, or nil
func (b *Block) Last() Expr {
	if len(b.Stmts) == 0 {
		return nil
	}
	if stmt, ok := b.Stmts[len(b.Stmts)-1].(*ExprStmt); ok {
		return stmt.Expr
	}
	return nil
}

type If struct {
	exprBase
	Cond Expr
	Then Expr
	Else Expr
}

type Match struct {
	exprBase
	Subject Expr
	Cases   []*Case
}

type Case struct {
	Range
	Pattern Pattern
	Guard   Expr
	Body    Expr
}

type Cast struct {
	exprBase
	Value  Expr
	Target TypeRef
}

// Conversion is an implicit conversion checkTypes inserted around Value
type Conversion struct {
	exprBase
	Value  Expr
	Method *types.Method
}
