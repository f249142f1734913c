package ast

import (
	"fmt"
	"strings"
)

// ExprString renders expr in source-like syntax, annotating typed
// expressions with their type as `expr: Type` when withTypes is set
func ExprString(expr Expr, withTypes bool) string {
	ctx := newShowContext(withTypes)
	ctx.showExpr(expr)
	return ctx.String()
}

// UnitString renders the declarations of u, with the type of every method body
func UnitString(u *Unit) string {
	ctx := newShowContext(true)
	for _, c := range u.Classes {
		ctx.line(fmt.Sprintf("%s %s {", c.Kind, c.Name))
		ctx.indent++
		for _, f := range c.Fields {
			ctx.line(fmt.Sprintf("%s: %s", f.Name, TypeRefString(f.Type)))
		}
		for _, m := range c.Methods {
			ctx.showMethod(m)
		}
		ctx.indent--
		ctx.line("}")
	}
	for _, m := range u.Functions {
		ctx.showMethod(m)
	}
	return ctx.String()
}

type showContext struct {
	*strings.Builder
	indent    int
	indentStr string
	withTypes bool
}

func newShowContext(withTypes bool) *showContext {
	return &showContext{
		Builder:   &strings.Builder{},
		indentStr: "  ",
		withTypes: withTypes,
	}
}

func (ctx *showContext) currentIndent() string {
	return strings.Repeat(ctx.indentStr, ctx.indent)
}

func (ctx *showContext) line(s string) {
	ctx.WriteString(ctx.currentIndent())
	ctx.WriteString(s)
	ctx.WriteString("\n")
}

func (ctx *showContext) showMethod(m *MethodDecl) {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Name + ": " + TypeRefString(p.Type)
	}
	ctx.WriteString(ctx.currentIndent())
	ctx.WriteString(fmt.Sprintf("fun %s(%s): %s", m.Name, strings.Join(params, ", "), TypeRefString(m.Return)))
	if m.Body == nil {
		ctx.WriteString("\n")
		return
	}
	ctx.WriteString(" = ")
	ctx.showExpr(m.Body)
	ctx.WriteString("\n")
}

func (ctx *showContext) showArgs(args []*Argument) {
	ctx.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			ctx.WriteString(", ")
		}
		if arg.Label != "" {
			ctx.WriteString(arg.Label + " = ")
		}
		ctx.showExpr(arg.Value)
	}
	ctx.WriteString(")")
}

func (ctx *showContext) showExpr(expr Expr) {
	if expr == nil {
		ctx.WriteString("nil")
		return
	}
	switch expr := expr.(type) {
	case *Literal:
		if expr.Kind == LitString {
			ctx.WriteString(fmt.Sprintf("%q", expr.Value))
		} else if expr.Kind == LitNull {
			ctx.WriteString("null")
		} else {
			ctx.WriteString(fmt.Sprint(expr.Value))
		}
	case *FieldAccess:
		if expr.Receiver != nil {
			ctx.showExpr(expr.Receiver)
			ctx.WriteString(".")
		}
		ctx.WriteString(expr.Name)
	case *ClassAccess:
		ctx.WriteString(expr.Name)
	case *MethodCall:
		if expr.Receiver != nil {
			ctx.showExpr(expr.Receiver)
			if !expr.Invoke {
				ctx.WriteString(".")
			}
		}
		if !expr.Invoke {
			ctx.WriteString(expr.Name)
		}
		if expr.Applied {
			ctx.showArgs(expr.Args)
		}
	case *ConstructorCall:
		ctx.WriteString(TypeRefString(expr.Class))
		ctx.showArgs(expr.Args)
	case *This:
		ctx.WriteString("this")
	case *Assignment:
		ctx.showExpr(expr.Target)
		ctx.WriteString(" = ")
		ctx.showExpr(expr.Value)
	case *Lambda:
		ctx.WriteString("{ ")
		for i, p := range expr.Params {
			if i > 0 {
				ctx.WriteString(", ")
			}
			ctx.WriteString(p.Name)
		}
		ctx.WriteString(" -> ")
		ctx.showExpr(expr.Body)
		ctx.WriteString(" }")
	case *MethodRef:
		if expr.Method != nil && expr.Method.Owner != nil {
			ctx.WriteString(expr.Method.Owner.Name)
		}
		ctx.WriteString("::")
		if expr.Method != nil {
			ctx.WriteString(expr.Method.Name)
		}
	case *Block:
		ctx.WriteString("{\n")
		ctx.indent++
		for _, stmt := range expr.Stmts {
			ctx.WriteString(ctx.currentIndent())
			ctx.showStmt(stmt)
			ctx.WriteString("\n")
		}
		ctx.indent--
		ctx.WriteString(ctx.currentIndent() + "}")
	case *If:
		ctx.WriteString("if (")
		ctx.showExpr(expr.Cond)
		ctx.WriteString(") ")
		ctx.showExpr(expr.Then)
		if expr.Else != nil {
			ctx.WriteString(" else ")
			ctx.showExpr(expr.Else)
		}
	case *Match:
		ctx.WriteString("match (")
		ctx.showExpr(expr.Subject)
		ctx.WriteString(") {\n")
		ctx.indent++
		for _, c := range expr.Cases {
			ctx.WriteString(ctx.currentIndent() + PatternString(c.Pattern))
			if c.Guard != nil {
				ctx.WriteString(" if ")
				ctx.showExpr(c.Guard)
			}
			ctx.WriteString(" -> ")
			ctx.showExpr(c.Body)
			ctx.WriteString("\n")
		}
		ctx.indent--
		ctx.WriteString(ctx.currentIndent() + "}")
	case *Cast:
		ctx.showExpr(expr.Value)
		ctx.WriteString(" as " + TypeRefString(expr.Target))
	case *Conversion:
		ctx.showExpr(expr.Value)
	default:
		ctx.WriteString(expr.Describe())
	}
	if ctx.withTypes && expr.Type() != nil {
		switch expr.(type) {
		case *Block, *Lambda:
		default:
			ctx.WriteString(": " + expr.Type().TypeName())
		}
	}
}

func (ctx *showContext) showStmt(stmt Stmt) {
	switch stmt := stmt.(type) {
	case *VarDecl:
		keyword := "var"
		if stmt.Final {
			keyword = "val"
		}
		ctx.WriteString(keyword + " " + stmt.Name)
		if stmt.Type != nil {
			ctx.WriteString(": " + TypeRefString(stmt.Type))
		}
		if stmt.Init != nil {
			ctx.WriteString(" = ")
			ctx.showExpr(stmt.Init)
		}
	case *ExprStmt:
		ctx.showExpr(stmt.Expr)
	case *Return:
		ctx.WriteString("return")
		if stmt.Value != nil {
			ctx.WriteString(" ")
			ctx.showExpr(stmt.Value)
		}
	}
}

// PatternString prints p as written in the source
func PatternString(p Pattern) string {
	switch p := p.(type) {
	case *WildcardPattern:
		return "_"
	case *BindingPattern:
		if p.Type != nil {
			return p.Name + ": " + TypeRefString(p.Type)
		}
		return p.Name
	case *LiteralPattern:
		return ExprString(p.Value, false)
	case *TypePattern:
		return "is " + TypeRefString(p.Type)
	default:
		return "?"
	}
}
