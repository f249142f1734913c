// Package syntax decodes units written as YAML into syntax-only ASTs.
//
// A unit is a mapping:
//
//	package: demo
//	name: Main
//	imports: [demo.util.Box, "demo.shapes.*", "demo.util.List as L"]
//	classes:   [class...]
//	functions: [method...]
//	fields:    [field...]
//
// Expressions are scalars or single-key mappings. Quoted scalars are string
// literals, plain scalars are numbers, booleans, null or names:
//
//	x                                   name
//	{long: 3}                           long literal
//	{op: ["+", x, 1]}                   x.+(1)
//	{call: {on: x, name: f, typeArgs: [Int], args: [1, {label: y, value: 2}]}}
//	{get: {of: x, name: f}}             x.f
//	{new: {type: "Box<Int>", args: [1]}}
//	{lambda: {params: ["x", "y: Int"], body: expr}}
//	{assign: {to: x, value: expr}}
//	{block: [stmt...]}
//	{if: {cond: expr, then: expr, else: expr}}
//	{match: {subject: expr, cases: [{pattern: pattern, guard: expr, body: expr}]}}
//	{cast: {value: expr, to: Type}}
//	{this: ~}
//
// Statements are {val: {name, type, init}}, {var: ...}, {return: expr} or
// expressions. Patterns are `_`, {bind: "x: Type"}, {is: Type} and
// {literal: expr}.
package syntax

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Decode reads the unit in data, registering its positions in fset under filename
func Decode(fset *token.FileSet, filename string, data []byte) (*ast.Unit, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", filename)
	}
	file := fset.AddFile(filename, -1, len(data))
	file.SetLinesForContent(data)
	d := &decoder{file: file}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		doc = doc.Content[0]
	}
	unit := d.unit(doc)
	if len(d.errs) > 0 {
		return nil, fmt.Errorf("decoding %s: %w", filename, errorList(d.errs))
	}
	return unit, nil
}

type errorList []error

func (l errorList) Error() string {
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

func (l errorList) Unwrap() []error { return l }

type decoder struct {
	file *token.File
	errs []error
}

func (d *decoder) pos(n *yaml.Node) token.Pos {
	if n == nil || n.Line < 1 || n.Line > d.file.LineCount() {
		return token.NoPos
	}
	return d.file.LineStart(n.Line) + token.Pos(n.Column-1)
}

func (d *decoder) rangeOf(n *yaml.Node) ast.Range {
	start := d.pos(n)
	end := start
	if start.IsValid() && n.Kind == yaml.ScalarNode {
		end += token.Pos(len(n.Value))
	}
	return ast.Range{PosStart: start, PosEnd: end}
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) {
	d.errs = append(d.errs, fmt.Errorf("%d:%d: %s", n.Line, n.Column, fmt.Sprintf(format, args...)))
}

// mapping returns the values of the mapping n by key, reporting keys not in allowed
func (d *decoder) mapping(n *yaml.Node, allowed ...string) map[string]*yaml.Node {
	if n.Kind != yaml.MappingNode {
		d.errorf(n, "expected a mapping")
		return nil
	}
	m := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		known := false
		for _, a := range allowed {
			known = known || a == key
		}
		if !known {
			d.errorf(n.Content[i], "unexpected key %q", key)
			continue
		}
		m[key] = n.Content[i+1]
	}
	return m
}

func (d *decoder) sequence(n *yaml.Node) []*yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		d.errorf(n, "expected a list")
		return nil
	}
	return n.Content
}

func (d *decoder) str(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind != yaml.ScalarNode {
		d.errorf(n, "expected a string")
		return ""
	}
	return n.Value
}

func (d *decoder) typeRef(n *yaml.Node) ast.TypeRef {
	if n == nil {
		return nil
	}
	t, err := ParseType(d.str(n))
	if err != nil {
		d.errorf(n, "%v", err)
		return nil
	}
	setTypeRange(t, d.rangeOf(n))
	return t
}

func setTypeRange(t ast.TypeRef, r ast.Range) {
	switch t := t.(type) {
	case *ast.NamedTypeRef:
		t.Range = r
		for _, arg := range t.Args {
			setTypeRange(arg, r)
		}
	case *ast.FunctionTypeRef:
		t.Range = r
		for _, p := range t.Params {
			setTypeRange(p, r)
		}
		setTypeRange(t.Return, r)
	}
}

func (d *decoder) modifiers(n *yaml.Node) types.Modifiers {
	var mods types.Modifiers
	for _, item := range d.sequence(n) {
		mod, ok := types.ParseModifier(d.str(item))
		if !ok {
			d.errorf(item, "unknown modifier %q", item.Value)
		}
		mods |= mod
	}
	return mods
}

func (d *decoder) unit(n *yaml.Node) *ast.Unit {
	m := d.mapping(n, "package", "name", "imports", "classes", "functions", "fields")
	unit := &ast.Unit{Range: d.rangeOf(n), Package: d.str(m["package"]), Name: d.str(m["name"])}
	if unit.Package == "" {
		d.errorf(n, "missing package")
	}
	for _, item := range d.sequence(m["imports"]) {
		unit.Imports = append(unit.Imports, d.importDecl(item))
	}
	for _, item := range d.sequence(m["classes"]) {
		unit.Classes = append(unit.Classes, d.class(item))
	}
	for _, item := range d.sequence(m["functions"]) {
		unit.Functions = append(unit.Functions, d.method(item))
	}
	for _, item := range d.sequence(m["fields"]) {
		unit.Fields = append(unit.Fields, d.field(item))
	}
	return unit
}

func (d *decoder) importDecl(n *yaml.Node) *ast.Import {
	imp := &ast.Import{Range: d.rangeOf(n)}
	path, alias, aliased := strings.Cut(d.str(n), " as ")
	imp.Path = strings.TrimSpace(path)
	if aliased {
		imp.Alias = strings.TrimSpace(alias)
	}
	if prefix, ok := strings.CutSuffix(imp.Path, ".*"); ok {
		imp.Path, imp.Wildcard = prefix, true
	}
	return imp
}

func (d *decoder) class(n *yaml.Node) *ast.ClassDecl {
	m := d.mapping(n, "name", "kind", "modifiers", "typeParams", "extends", "implements", "fields", "methods", "constructors")
	decl := &ast.ClassDecl{
		Range:     d.rangeOf(n),
		Name:      d.str(m["name"]),
		Kind:      types.KindClass,
		Modifiers: d.modifiers(m["modifiers"]),
		SuperType: d.typeRef(m["extends"]),
	}
	switch kind := d.str(m["kind"]); kind {
	case "", "class":
	case "interface":
		decl.Kind = types.KindInterface
	default:
		d.errorf(m["kind"], "unknown class kind %q", kind)
	}
	decl.TypeParams = d.typeParams(m["typeParams"])
	for _, item := range d.sequence(m["implements"]) {
		if t := d.typeRef(item); t != nil {
			decl.Interfaces = append(decl.Interfaces, t)
		}
	}
	for _, item := range d.sequence(m["fields"]) {
		decl.Fields = append(decl.Fields, d.field(item))
	}
	for _, item := range d.sequence(m["methods"]) {
		decl.Methods = append(decl.Methods, d.method(item))
	}
	for _, item := range d.sequence(m["constructors"]) {
		decl.Constructors = append(decl.Constructors, d.constructor(item))
	}
	return decl
}

func (d *decoder) typeParams(n *yaml.Node) []*ast.TypeParamDecl {
	var decls []*ast.TypeParamDecl
	for _, item := range d.sequence(n) {
		decl, err := ParseTypeParam(d.str(item))
		if err != nil {
			d.errorf(item, "%v", err)
			continue
		}
		decl.Range = d.rangeOf(item)
		for _, b := range decl.UpperBounds {
			setTypeRange(b, decl.Range)
		}
		setTypeRange(decl.LowerBound, decl.Range)
		decls = append(decls, decl)
	}
	return decls
}

func (d *decoder) params(n *yaml.Node) []*ast.ParamDecl {
	var decls []*ast.ParamDecl
	for _, item := range d.sequence(n) {
		decl, err := ParseParam(d.str(item))
		if err != nil {
			d.errorf(item, "%v", err)
			continue
		}
		decl.Range = d.rangeOf(item)
		setTypeRange(decl.Type, decl.Range)
		decls = append(decls, decl)
	}
	return decls
}

func (d *decoder) field(n *yaml.Node) *ast.FieldDecl {
	m := d.mapping(n, "name", "type", "modifiers", "init")
	decl := &ast.FieldDecl{
		Range:     d.rangeOf(n),
		Name:      d.str(m["name"]),
		Modifiers: d.modifiers(m["modifiers"]),
		Type:      d.typeRef(m["type"]),
	}
	if init, ok := m["init"]; ok {
		decl.Init = d.expr(init)
	}
	return decl
}

func (d *decoder) method(n *yaml.Node) *ast.MethodDecl {
	m := d.mapping(n, "name", "modifiers", "typeParams", "params", "returns", "body")
	decl := &ast.MethodDecl{
		Range:      d.rangeOf(n),
		Name:       d.str(m["name"]),
		Modifiers:  d.modifiers(m["modifiers"]),
		TypeParams: d.typeParams(m["typeParams"]),
		Params:     d.params(m["params"]),
		Return:     d.typeRef(m["returns"]),
	}
	if body, ok := m["body"]; ok {
		decl.Body = d.body(body, decl.Return != nil)
	}
	return decl
}

func (d *decoder) constructor(n *yaml.Node) *ast.ConstructorDecl {
	m := d.mapping(n, "modifiers", "params", "body")
	decl := &ast.ConstructorDecl{
		Range:     d.rangeOf(n),
		Modifiers: d.modifiers(m["modifiers"]),
		Params:    d.params(m["params"]),
	}
	if body, ok := m["body"]; ok {
		decl.Body = d.body(body, false)
	} else {
		decl.Body = &ast.Block{}
	}
	return decl
}

// body decodes a list of statements, or a single expression which is
// returned when returns is set
func (d *decoder) body(n *yaml.Node, returns bool) *ast.Block {
	if n.Kind == yaml.SequenceNode {
		return d.block(n)
	}
	b := &ast.Block{}
	b.Range = d.rangeOf(n)
	e := d.expr(n)
	if returns {
		b.Stmts = []ast.Stmt{&ast.Return{Range: b.Range, Value: e}}
	} else {
		b.Stmts = []ast.Stmt{&ast.ExprStmt{Range: b.Range, Expr: e}}
	}
	return b
}
