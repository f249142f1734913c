package sema

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
)

// FoldConstants replaces the calls of built-in operations on literals by
// their result, reads of constant fields by their value and conditionals on
// a constant condition by the branch taken.
//
// A static final field whose initializer folds to a literal becomes a
// constant. Integer division by zero is left to fail at run time.
func (c *Checker) FoldConstants() {
	c.walkBodies(bodies{
		field: func(_ scope.Context, decl *ast.FieldDecl) {
			decl.Init = c.fold(decl.Init)
			f := decl.Field
			if lit, ok := decl.Init.(*ast.Literal); ok && lit.Kind != ast.LitNull && f.IsStatic() && f.Modifiers.Has(types.Final) {
				f.Constant = lit.Value
			}
		},
		method: func(_ scope.Context, decl *ast.MethodDecl) {
			c.fold(decl.Body)
		},
		constructor: func(_ scope.Context, _ *ast.ClassDecl, decl *ast.ConstructorDecl) {
			c.fold(decl.Body)
		},
	})
}

func (c *Checker) fold(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.Literal, *ast.ClassAccess, *ast.This, *ast.MethodRef:
		return e
	case *ast.FieldAccess:
		e.Receiver = c.fold(e.Receiver)
		if f, ok := e.Member.(*types.Field); ok && f.Constant != nil {
			if kind, ok := c.literalKind(f.Type); ok {
				return literal(e.Range, kind, f.Constant, e.Type())
			}
		}
		return e
	case *ast.MethodCall:
		e.Receiver = c.fold(e.Receiver)
		c.foldArgs(e.Args)
		return c.foldIntrinsic(e)
	case *ast.ConstructorCall:
		c.foldArgs(e.Args)
		return e
	case *ast.Assignment:
		if access, ok := e.Target.(*ast.FieldAccess); ok {
			access.Receiver = c.fold(access.Receiver)
		}
		e.Value = c.fold(e.Value)
		return e
	case *ast.Lambda:
		e.Body = c.fold(e.Body)
		return e
	case *ast.Block:
		for _, stmt := range e.Stmts {
			switch stmt := stmt.(type) {
			case *ast.VarDecl:
				stmt.Init = c.fold(stmt.Init)
			case *ast.ExprStmt:
				stmt.Expr = c.fold(stmt.Expr)
			case *ast.Return:
				stmt.Value = c.fold(stmt.Value)
			default:
				diag.Fail("foldConstants: unexpected statement %T", stmt)
			}
		}
		return e
	case *ast.If:
		e.Cond = c.fold(e.Cond)
		e.Then = c.fold(e.Then)
		e.Else = c.fold(e.Else)
		if cond, ok := e.Cond.(*ast.Literal); ok && cond.Kind == ast.LitBool && e.Else != nil {
			if cond.Value.(bool) {
				return e.Then
			}
			return e.Else
		}
		return e
	case *ast.Match:
		e.Subject = c.fold(e.Subject)
		for _, cs := range e.Cases {
			cs.Guard = c.fold(cs.Guard)
			cs.Body = c.fold(cs.Body)
		}
		return e
	case *ast.Cast:
		e.Value = c.fold(e.Value)
		return e
	case *ast.Conversion:
		e.Value = c.fold(e.Value)
		if lit, ok := e.Value.(*ast.Literal); ok {
			if folded, ok := c.evaluate(e.Method, lit, nil, e.Type()); ok {
				folded.Range = e.Range
				return folded
			}
		}
		return e
	default:
		diag.Fail("foldConstants: unexpected expression %T", e)
		return nil
	}
}

func (c *Checker) foldArgs(args []*ast.Argument) {
	for _, arg := range args {
		arg.Value = c.fold(arg.Value)
	}
}

func (c *Checker) foldIntrinsic(call *ast.MethodCall) ast.Expr {
	if call.Method == nil || call.Method.Intrinsic == "" {
		return call
	}
	receiver, ok := call.Receiver.(*ast.Literal)
	if !ok {
		return call
	}
	args := make([]*ast.Literal, len(call.Args))
	for i, arg := range call.Args {
		if args[i], ok = arg.Value.(*ast.Literal); !ok {
			return call
		}
	}
	if folded, ok := c.evaluate(call.Method, receiver, args, call.Type()); ok {
		folded.Range = call.Range
		return folded
	}
	return call
}

func literal(at ast.Range, kind ast.LiteralKind, value any, t types.Type) *ast.Literal {
	lit := &ast.Literal{Kind: kind, Value: value}
	lit.Range = at
	lit.SetType(t)
	return lit
}

// literalKind is the kind of literal a constant of type t is written as
func (c *Checker) literalKind(t types.Type) (ast.LiteralKind, bool) {
	switch types.ClassOf(t) {
	case c.builtins.Int:
		return ast.LitInt, true
	case c.builtins.Long:
		return ast.LitLong, true
	case c.builtins.Double:
		return ast.LitDouble, true
	case c.builtins.Boolean:
		return ast.LitBool, true
	case c.builtins.String:
		return ast.LitString, true
	}
	return 0, false
}

// evaluate runs the built-in operation m on constant operands. ok is false
// when the operation cannot be folded.
func (c *Checker) evaluate(m *types.Method, receiver *ast.Literal, args []*ast.Literal, result types.Type) (*ast.Literal, bool) {
	kind, ok := c.literalKind(result)
	if !ok {
		return nil, false
	}
	var value any
	switch m.Intrinsic {
	case "add", "sub", "mul", "div", "rem":
		if len(args) != 1 {
			return nil, false
		}
		value, ok = arithmetic(m.Intrinsic, receiver, args[0], kind)
	case "lt", "le", "gt", "ge":
		if len(args) != 1 {
			return nil, false
		}
		value, ok = compare(m.Intrinsic, receiver, args[0])
	case "neg":
		value, ok = arithmetic("sub", &ast.Literal{Kind: receiver.Kind, Value: zeroOf(receiver)}, receiver, kind)
	case "eq", "ne":
		if len(args) != 1 || receiver.Kind != args[0].Kind {
			return nil, false
		}
		value, ok = receiver.Value == args[0].Value, true
		if m.Intrinsic == "ne" {
			value = !value.(bool)
		}
	case "and", "or":
		if len(args) != 1 {
			return nil, false
		}
		l, lok := receiver.Value.(bool)
		r, rok := args[0].Value.(bool)
		ok = lok && rok
		if m.Intrinsic == "and" {
			value = l && r
		} else {
			value = l || r
		}
	case "not":
		b, bok := receiver.Value.(bool)
		value, ok = !b, bok
	case "concat":
		if len(args) != 1 {
			return nil, false
		}
		s, sok := receiver.Value.(string)
		value, ok = s+show(args[0]), sok
	case "toString":
		value, ok = show(receiver), true
	case "length":
		s, sok := receiver.Value.(string)
		value, ok = int64(utf8.RuneCountInString(s)), sok
	case "compare":
		if len(args) != 1 {
			return nil, false
		}
		value, ok = compareTo(receiver, args[0])
	case "toInt", "toLong", "toDouble", "i2l", "i2d", "l2d", "s2i", "s2l", "s2d", "b2i", "b2l", "b2d":
		value, ok = convertLiteral(receiver, kind)
	default:
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return literal(receiver.Range, kind, value, result), true
}

func asInt(lit *ast.Literal) (int64, bool) {
	switch v := lit.Value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

func asFloat(lit *ast.Literal) (float64, bool) {
	switch v := lit.Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func zeroOf(lit *ast.Literal) any {
	if lit.Kind == ast.LitDouble {
		return float64(0)
	}
	return int64(0)
}

func arithmetic(op string, l, r *ast.Literal, kind ast.LiteralKind) (any, bool) {
	if kind == ast.LitDouble {
		a, aok := asFloat(l)
		b, bok := asFloat(r)
		if !aok || !bok {
			return nil, false
		}
		switch op {
		case "add":
			return a + b, true
		case "sub":
			return a - b, true
		case "mul":
			return a * b, true
		case "div":
			return a / b, true
		default:
			return math.Mod(a, b), true
		}
	}
	a, aok := asInt(l)
	b, bok := asInt(r)
	if !aok || !bok {
		return nil, false
	}
	var v int64
	switch op {
	case "add":
		v = a + b
	case "sub":
		v = a - b
	case "mul":
		v = a * b
	case "div", "rem":
		if b == 0 {
			return nil, false
		}
		if op == "div" {
			v = a / b
		} else {
			v = a % b
		}
	}
	if kind == ast.LitInt {
		v = int64(int32(v))
	}
	return v, true
}

func compare(op string, l, r *ast.Literal) (any, bool) {
	cmp, ok := compareTo(l, r)
	if !ok {
		return nil, false
	}
	switch op {
	case "lt":
		return cmp < 0, true
	case "le":
		return cmp <= 0, true
	case "gt":
		return cmp > 0, true
	default:
		return cmp >= 0, true
	}
}

func compareTo(l, r *ast.Literal) (int64, bool) {
	if ls, ok := l.Value.(string); ok {
		rs, ok := r.Value.(string)
		if !ok {
			return 0, false
		}
		switch {
		case ls < rs:
			return -1, true
		case ls > rs:
			return 1, true
		}
		return 0, true
	}
	if l.Kind == ast.LitDouble || r.Kind == ast.LitDouble {
		a, aok := asFloat(l)
		b, bok := asFloat(r)
		if !aok || !bok || math.IsNaN(a) || math.IsNaN(b) {
			return 0, false
		}
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		}
		return 0, true
	}
	a, aok := asInt(l)
	b, bok := asInt(r)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	}
	return 0, true
}

// convertLiteral widens or narrows a numeric literal to kind
func convertLiteral(lit *ast.Literal, kind ast.LiteralKind) (any, bool) {
	switch kind {
	case ast.LitDouble:
		return asFloat(lit)
	case ast.LitInt, ast.LitLong:
		v, ok := asInt(lit)
		if !ok {
			f, fok := asFloat(lit)
			if !fok || math.IsNaN(f) {
				return nil, false
			}
			v, ok = int64(f), true
		}
		if kind == ast.LitInt {
			v = int64(int32(v))
		}
		return v, ok
	}
	return nil, false
}

// show is the string a literal is concatenated as
func show(lit *ast.Literal) string {
	switch v := lit.Value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !math.IsInf(v, 0) && !math.IsNaN(v) && v == math.Trunc(v) && !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s
	}
	if v, ok := asInt(lit); ok {
		return strconv.FormatInt(v, 10)
	}
	return ""
}
