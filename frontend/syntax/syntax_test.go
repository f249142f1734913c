package syntax

import (
	"go/token"
	"testing"

	"github.com/cottand/kiln/frontend"
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boxUnit = `
package: demo
name: Boxes
imports:
  - demo.util.*
  - demo.shapes.Circle as C
classes:
  - name: Box
    typeParams: ["out T"]
    fields:
      - {name: value, type: T, modifiers: [final]}
    constructors:
      - params: ["v: T"]
        body:
          - assign: {to: {get: {of: {this: ~}, name: value}}, value: v}
functions:
  - name: wrap
    params: ["s: String"]
    returns: Box<String>
    body: {new: {type: Box<String>, args: [s]}}
  - name: describe
    params: ["x: Any"]
    returns: String
    body:
      - val: {name: prefix, init: "x is "}
      - return:
          match:
            subject: x
            cases:
              - {pattern: {literal: 0}, body: "zero"}
              - {pattern: {bind: "n: Int"}, guard: {op: [">", n, 0]}, body: "positive"}
              - {pattern: {is: String}, body: {op: [concat, prefix, "text"]}}
              - {pattern: _, body: 'other'}
fields:
  - {name: LIMIT, modifiers: [static, final], init: {long: 10}}
`

func TestDecodeUnit(t *testing.T) {
	fset := token.NewFileSet()
	unit, err := Decode(fset, "boxes.yaml", []byte(boxUnit))
	require.NoError(t, err)

	assert.Equal(t, "demo", unit.Package)
	assert.Equal(t, "Boxes", unit.Name)
	require.Len(t, unit.Imports, 2)
	assert.Equal(t, &ast.Import{Range: unit.Imports[0].Range, Path: "demo.util", Wildcard: true}, unit.Imports[0])
	assert.Equal(t, "demo.shapes.Circle", unit.Imports[1].Path)
	assert.Equal(t, "C", unit.Imports[1].Alias)

	require.Len(t, unit.Classes, 1)
	box := unit.Classes[0]
	assert.Equal(t, types.KindClass, box.Kind)
	require.Len(t, box.TypeParams, 1)
	assert.Equal(t, types.Covariant, box.TypeParams[0].Variance)
	require.Len(t, box.Fields, 1)
	assert.True(t, box.Fields[0].Modifiers.Has(types.Final))
	require.Len(t, box.Constructors, 1)
	ctorBody := box.Constructors[0].Body.Stmts
	require.Len(t, ctorBody, 1)
	assign := ctorBody[0].(*ast.ExprStmt).Expr.(*ast.Assignment)
	target := assign.Target.(*ast.FieldAccess)
	assert.Equal(t, "value", target.Name)
	assert.IsType(t, &ast.This{}, target.Receiver)

	require.Len(t, unit.Functions, 2)
	wrap := unit.Functions[0]
	require.Len(t, wrap.Body.Stmts, 1)
	ret := wrap.Body.Stmts[0].(*ast.Return)
	ctor := ret.Value.(*ast.ConstructorCall)
	assert.Equal(t, "Box", ctor.Class.Name)
	require.Len(t, ctor.Class.Args, 1)

	describe := unit.Functions[1]
	require.Len(t, describe.Body.Stmts, 2)
	prefix := describe.Body.Stmts[0].(*ast.VarDecl)
	assert.True(t, prefix.Final)
	assert.Equal(t, &ast.Literal{Kind: ast.LitString, Value: "x is "}, withoutRange(prefix.Init))
	match := describe.Body.Stmts[1].(*ast.Return).Value.(*ast.Match)
	require.Len(t, match.Cases, 4)
	assert.IsType(t, &ast.LiteralPattern{}, match.Cases[0].Pattern)
	binding := match.Cases[1].Pattern.(*ast.BindingPattern)
	assert.Equal(t, "n", binding.Name)
	assert.NotNil(t, match.Cases[1].Guard)
	assert.IsType(t, &ast.TypePattern{}, match.Cases[2].Pattern)
	assert.IsType(t, &ast.WildcardPattern{}, match.Cases[3].Pattern)
	assert.Equal(t, "other", match.Cases[3].Body.(*ast.Literal).Value)

	require.Len(t, unit.Fields, 1)
	limit := unit.Fields[0]
	assert.True(t, limit.Modifiers.Has(types.Static|types.Final))
	assert.Equal(t, ast.LitLong, limit.Init.(*ast.Literal).Kind)
}

func withoutRange(e ast.Expr) ast.Expr {
	if lit, ok := e.(*ast.Literal); ok {
		return &ast.Literal{Kind: lit.Kind, Value: lit.Value}
	}
	return e
}

func TestDecodePositions(t *testing.T) {
	fset := token.NewFileSet()
	unit, err := Decode(fset, "pos.yaml", []byte("package: p\nfunctions:\n  - name: f\n    body: [missing]\n"))
	require.NoError(t, err)

	stmt := unit.Functions[0].Body.Stmts[0].(*ast.ExprStmt)
	pos := fset.Position(stmt.Expr.Pos())
	assert.Equal(t, "pos.yaml", pos.Filename)
	assert.Equal(t, 4, pos.Line)
	assert.Equal(t, 12, pos.Column)
}

func TestQualifiedNamesBecomeAccessChains(t *testing.T) {
	unit, err := Decode(token.NewFileSet(), "q.yaml", []byte("package: p\nfields:\n  - {name: x, init: a.b.c}\n"))
	require.NoError(t, err)

	c := unit.Fields[0].Init.(*ast.FieldAccess)
	assert.Equal(t, "c", c.Name)
	b := c.Receiver.(*ast.FieldAccess)
	assert.Equal(t, "b", b.Name)
	a := b.Receiver.(*ast.FieldAccess)
	assert.Equal(t, "a", a.Name)
	assert.Nil(t, a.Receiver)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"NoPackage", "name: x\n", "missing package"},
		{"UnknownKey", "package: p\nfoo: 1\n", `unexpected key "foo"`},
		{"UnknownModifier", "package: p\nfields:\n  - {name: x, modifiers: [sealed], init: 1}\n", `unknown modifier "sealed"`},
		{"UnknownExpression", "package: p\nfields:\n  - {name: x, init: {loop: 1}}\n", `unknown expression "loop"`},
		{"BadType", "package: p\nfields:\n  - {name: x, type: 'List<Int'}\n", "expected ',' or '>'"},
		{"Syntax", "package: [\n", "decoding bad.yaml"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(token.NewFileSet(), "bad.yaml", []byte(test.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.want)
		})
	}
}

func TestParseType(t *testing.T) {
	ref, err := ParseType("kiln.lang.Map<String, List<Int>>")
	require.NoError(t, err)
	named := ref.(*ast.NamedTypeRef)
	assert.Equal(t, "kiln.lang.Map", named.Name)
	require.Len(t, named.Args, 2)
	assert.Equal(t, "List", named.Args[1].(*ast.NamedTypeRef).Name)

	ref, err = ParseType("(Int, String) -> Boolean")
	require.NoError(t, err)
	fn := ref.(*ast.FunctionTypeRef)
	assert.Len(t, fn.Params, 2)
	assert.Equal(t, "Boolean", fn.Return.(*ast.NamedTypeRef).Name)

	_, err = ParseType("Int Int")
	assert.Error(t, err)
}

func TestParseTypeParam(t *testing.T) {
	decl, err := ParseTypeParam("T : Comparable<T> & Cloneable super Int")
	require.NoError(t, err)
	assert.Equal(t, "T", decl.Name)
	assert.Equal(t, types.Invariant, decl.Variance)
	assert.Len(t, decl.UpperBounds, 2)
	assert.NotNil(t, decl.LowerBound)

	decl, err = ParseTypeParam("in E")
	require.NoError(t, err)
	assert.Equal(t, types.Contravariant, decl.Variance)

	// a parameter may be named like a variance keyword
	decl, err = ParseTypeParam("out")
	require.NoError(t, err)
	assert.Equal(t, "out", decl.Name)
}

func TestDecodedUnitCompiles(t *testing.T) {
	src := `
package: demo
functions:
  - name: add
    params: ["a: Int", "b: Int"]
    returns: Int
    body: {op: ["+", a, b]}
`
	unit, err := Decode(token.NewFileSet(), "add.yaml", []byte(src))
	require.NoError(t, err)

	res, err := frontend.Compile(unit, universe.New(), frontend.Options{})
	require.NoError(t, err)
	assert.Zero(t, res.Diagnostics.Len())
	assert.Equal(t, frontend.PhaseEmit, res.Reached)
}
