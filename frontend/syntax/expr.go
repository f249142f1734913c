package syntax

import (
	"strings"

	"github.com/cottand/kiln/frontend/ast"
	"gopkg.in/yaml.v3"
)

func (d *decoder) expr(n *yaml.Node) ast.Expr {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return d.scalar(n)
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			d.errorf(n, "an expression is a mapping with a single key")
			return nil
		}
		return d.form(n, n.Content[0].Value, n.Content[1])
	default:
		d.errorf(n, "expected an expression")
		return nil
	}
}

func (d *decoder) scalar(n *yaml.Node) ast.Expr {
	at := d.rangeOf(n)
	lit := &ast.Literal{}
	lit.Range = at
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		lit.Kind, lit.Value = ast.LitString, n.Value
		return lit
	}
	switch n.ShortTag() {
	case "!!int":
		var v int64
		if err := n.Decode(&v); err != nil {
			d.errorf(n, "%v", err)
		}
		lit.Kind, lit.Value = ast.LitInt, v
	case "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			d.errorf(n, "%v", err)
		}
		lit.Kind, lit.Value = ast.LitDouble, v
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			d.errorf(n, "%v", err)
		}
		lit.Kind, lit.Value = ast.LitBool, v
	case "!!null":
		lit.Kind = ast.LitNull
	default:
		return d.name(n)
	}
	return lit
}

// name decodes a possibly qualified name into a chain of bare names that
// resolve sorts out
func (d *decoder) name(n *yaml.Node) ast.Expr {
	at := d.rangeOf(n)
	var e ast.Expr
	for _, part := range strings.Split(n.Value, ".") {
		if part == "" {
			d.errorf(n, "invalid name %q", n.Value)
			return nil
		}
		access := &ast.FieldAccess{Receiver: e, Name: part}
		access.Range = at
		e = access
	}
	return e
}

func (d *decoder) form(n *yaml.Node, kind string, v *yaml.Node) ast.Expr {
	at := d.rangeOf(n)
	switch kind {
	case "long":
		var value int64
		if err := v.Decode(&value); err != nil {
			d.errorf(v, "%v", err)
		}
		lit := &ast.Literal{Kind: ast.LitLong, Value: value}
		lit.Range = at
		return lit
	case "string":
		lit := &ast.Literal{Kind: ast.LitString, Value: d.str(v)}
		lit.Range = at
		return lit
	case "op":
		operands := d.sequence(v)
		if len(operands) < 2 || len(operands) > 3 {
			d.errorf(v, "op takes an operator and one or two operands")
			return nil
		}
		call := &ast.MethodCall{Name: d.str(operands[0]), Receiver: d.expr(operands[1]), Applied: true}
		call.Range = at
		for _, operand := range operands[2:] {
			call.Args = append(call.Args, &ast.Argument{Range: d.rangeOf(operand), Value: d.expr(operand)})
		}
		return call
	case "call":
		m := d.mapping(v, "on", "name", "typeArgs", "args")
		call := &ast.MethodCall{Name: d.str(m["name"]), Receiver: d.expr(m["on"]), Applied: true}
		call.Range = at
		for _, t := range d.sequence(m["typeArgs"]) {
			if ref := d.typeRef(t); ref != nil {
				call.TypeArgs = append(call.TypeArgs, ref)
			}
		}
		call.Args = d.args(m["args"])
		return call
	case "get":
		m := d.mapping(v, "of", "name")
		access := &ast.FieldAccess{Receiver: d.expr(m["of"]), Name: d.str(m["name"])}
		access.Range = at
		return access
	case "new":
		m := d.mapping(v, "type", "args")
		ref, ok := d.typeRef(m["type"]).(*ast.NamedTypeRef)
		if !ok {
			d.errorf(v, "new needs a class type")
			return nil
		}
		ctor := &ast.ConstructorCall{Class: ref, Args: d.args(m["args"])}
		ctor.Range = at
		return ctor
	case "this":
		this := &ast.This{}
		this.Range = at
		return this
	case "assign":
		m := d.mapping(v, "to", "value")
		a := &ast.Assignment{Target: d.expr(m["to"]), Value: d.expr(m["value"])}
		a.Range = at
		return a
	case "lambda":
		m := d.mapping(v, "params", "body")
		l := &ast.Lambda{Params: d.params(m["params"]), Body: d.expr(m["body"])}
		l.Range = at
		return l
	case "block":
		b := d.block(v)
		b.Range = at
		return b
	case "if":
		m := d.mapping(v, "cond", "then", "else")
		e := &ast.If{Cond: d.expr(m["cond"]), Then: d.expr(m["then"]), Else: d.expr(m["else"])}
		e.Range = at
		return e
	case "match":
		m := d.mapping(v, "subject", "cases")
		e := &ast.Match{Subject: d.expr(m["subject"])}
		e.Range = at
		for _, item := range d.sequence(m["cases"]) {
			cm := d.mapping(item, "pattern", "guard", "body")
			e.Cases = append(e.Cases, &ast.Case{
				Range:   d.rangeOf(item),
				Pattern: d.pattern(cm["pattern"]),
				Guard:   d.expr(cm["guard"]),
				Body:    d.expr(cm["body"]),
			})
		}
		return e
	case "cast":
		m := d.mapping(v, "value", "to")
		e := &ast.Cast{Value: d.expr(m["value"]), Target: d.typeRef(m["to"])}
		e.Range = at
		return e
	default:
		d.errorf(n, "unknown expression %q", kind)
		return nil
	}
}

func (d *decoder) args(n *yaml.Node) []*ast.Argument {
	var args []*ast.Argument
	for _, item := range d.sequence(n) {
		arg := &ast.Argument{Range: d.rangeOf(item)}
		if item.Kind == yaml.MappingNode && len(item.Content) == 4 && hasKey(item, "label") {
			m := d.mapping(item, "label", "value")
			arg.Label = d.str(m["label"])
			arg.Value = d.expr(m["value"])
		} else {
			arg.Value = d.expr(item)
		}
		args = append(args, arg)
	}
	return args
}

func hasKey(n *yaml.Node, key string) bool {
	for i := 0; i < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

func (d *decoder) block(n *yaml.Node) *ast.Block {
	b := &ast.Block{}
	b.Range = d.rangeOf(n)
	for _, item := range d.sequence(n) {
		if stmt := d.stmt(item); stmt != nil {
			b.Stmts = append(b.Stmts, stmt)
		}
	}
	return b
}

func (d *decoder) stmt(n *yaml.Node) ast.Stmt {
	at := d.rangeOf(n)
	if n.Kind == yaml.MappingNode && len(n.Content) == 2 {
		v := n.Content[1]
		switch n.Content[0].Value {
		case "val", "var":
			m := d.mapping(v, "name", "type", "init")
			return &ast.VarDecl{
				Range: at,
				Name:  d.str(m["name"]),
				Final: n.Content[0].Value == "val",
				Type:  d.typeRef(m["type"]),
				Init:  d.expr(m["init"]),
			}
		case "return":
			r := &ast.Return{Range: at}
			if v.ShortTag() != "!!null" {
				r.Value = d.expr(v)
			}
			return r
		}
	}
	e := d.expr(n)
	if e == nil {
		return nil
	}
	return &ast.ExprStmt{Range: at, Expr: e}
}

func (d *decoder) pattern(n *yaml.Node) ast.Pattern {
	at := d.rangeOf(n)
	if n == nil {
		return &ast.WildcardPattern{Range: at}
	}
	if n.Kind == yaml.ScalarNode && n.Value == "_" {
		return &ast.WildcardPattern{Range: at}
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		d.errorf(n, "expected a pattern")
		return nil
	}
	v := n.Content[1]
	switch kind := n.Content[0].Value; kind {
	case "bind":
		param, err := ParseParam(d.str(v))
		if err != nil {
			d.errorf(v, "%v", err)
			return nil
		}
		setTypeRange(param.Type, at)
		return &ast.BindingPattern{Range: at, Name: param.Name, Type: param.Type}
	case "is":
		return &ast.TypePattern{Range: at, Type: d.typeRef(v)}
	case "literal":
		lit, ok := d.expr(v).(*ast.Literal)
		if !ok {
			d.errorf(v, "expected a literal")
			return nil
		}
		return &ast.LiteralPattern{Range: at, Value: lit}
	default:
		d.errorf(n, "unknown pattern %q", kind)
		return nil
	}
}
