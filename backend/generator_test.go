package backend

import (
	"testing"

	"github.com/cottand/kiln/frontend"
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func name(n string) *ast.FieldAccess { return &ast.FieldAccess{Name: n} }

func intLit(v int64) *ast.Literal { return &ast.Literal{Kind: ast.LitInt, Value: v} }

func call(receiver ast.Expr, method string, args ...ast.Expr) *ast.MethodCall {
	arguments := make([]*ast.Argument, len(args))
	for i, arg := range args {
		arguments[i] = &ast.Argument{Value: arg}
	}
	return &ast.MethodCall{Receiver: receiver, Name: method, Args: arguments, Applied: true}
}

func function(n string, result ast.TypeRef, params []*ast.ParamDecl, body ast.Expr) *ast.MethodDecl {
	return &ast.MethodDecl{Name: n, Return: result, Params: params, Body: &ast.Block{Stmts: []ast.Stmt{&ast.Return{Value: body}}}}
}

func intParam(n string) *ast.ParamDecl { return &ast.ParamDecl{Name: n, Type: ast.Named("Int")} }

func lower(t *testing.T, functions ...*ast.MethodDecl) *Program {
	t.Helper()
	unit := &ast.Unit{Package: "test", Name: "Test", Functions: functions}
	res, err := frontend.Compile(unit, universe.New(), frontend.Options{})
	require.NoError(t, err)
	require.False(t, res.Diagnostics.HasError(), "%v", res.Diagnostics.All())

	p, err := NewGenerator().Lower(unit)
	require.NoError(t, err)
	return p
}

func ops(code []Instruction) []Op {
	result := make([]Op, len(code))
	for i, ins := range code {
		result[i] = ins.Op
	}
	return result
}

func TestArithmeticOnParameters(t *testing.T) {
	p := lower(t, function("add", ast.Named("Int"), []*ast.ParamDecl{intParam("a"), intParam("b")}, call(name("a"), "+", name("b"))))

	header := p.Class("test.TestKt")
	require.NotNil(t, header)
	add := header.Method("add")
	require.NotNil(t, add)
	assert.Equal(t, []Instruction{
		{Op: OpLoad, Arg: 0},
		{Op: OpLoad, Arg: 1},
		{Op: OpIntrinsic, Ref: "add", Arg: 1},
		{Op: OpReturnValue},
	}, add.Code)
	assert.Equal(t, 2, add.Locals)
}

func TestConstantsAreFoldedBeforeEmit(t *testing.T) {
	p := lower(t, function("three", ast.Named("Int"), nil, call(intLit(1), "+", intLit(2))))

	three := p.Class("test.TestKt").Method("three")
	require.NotNil(t, three)
	assert.Equal(t, []Instruction{{Op: OpConst, Value: int64(3)}, {Op: OpReturnValue}}, three.Code)
}

func TestCapturingLambdaBecomesClosure(t *testing.T) {
	fnType := ast.Named("Function1", ast.Named("Int"), ast.Named("Int"))
	body := &ast.Lambda{
		Params: []*ast.ParamDecl{{Name: "y"}},
		Body:   call(name("y"), "+", name("n")),
	}
	p := lower(t, function("adder", fnType, []*ast.ParamDecl{intParam("n")}, body))

	header := p.Class("test.TestKt")
	adder := header.Method("adder")
	require.NotNil(t, adder)
	assert.Equal(t, []Op{OpLoad, OpMakeClosure, OpReturnValue}, ops(adder.Code))
	closure := adder.Code[1]
	assert.Equal(t, 1, closure.Arg)
	assert.Equal(t, "kiln.lang.Function1", closure.Value)

	synthetic := header.Method("lambda$0")
	require.NotNil(t, synthetic)
	// captured n is local 0, the parameter y local 1
	assert.Equal(t, []Instruction{
		{Op: OpLoad, Arg: 1},
		{Op: OpLoad, Arg: 0},
		{Op: OpIntrinsic, Ref: "add", Arg: 1},
		{Op: OpReturnValue},
	}, synthetic.Code)
}

func TestGenerateEncodesYAML(t *testing.T) {
	unit := &ast.Unit{Package: "test", Name: "Test", Functions: []*ast.MethodDecl{
		function("one", ast.Named("Int"), nil, intLit(1)),
	}}
	res, err := frontend.Compile(unit, universe.New(), frontend.Options{Generator: NewGenerator()})
	require.NoError(t, err)
	require.True(t, res.Emitted())
	assert.Contains(t, string(res.Output), "name: test.TestKt")
	assert.Contains(t, string(res.Output), "op: returnvalue")
}

func TestEmitIsSkippedOnErrors(t *testing.T) {
	unit := &ast.Unit{Package: "test", Name: "Test", Functions: []*ast.MethodDecl{
		function("broken", ast.Named("Int"), nil, name("missing")),
	}}
	res, err := frontend.Compile(unit, universe.New(), frontend.Options{Generator: NewGenerator()})
	require.NoError(t, err)
	assert.True(t, res.Diagnostics.HasError())
	assert.False(t, res.Emitted())
	assert.Nil(t, res.Output)
}
