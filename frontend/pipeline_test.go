package frontend

import (
	"testing"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGenerator struct {
	units []*ast.Unit
	out   []byte
	err   error
}

func (g *recordingGenerator) Generate(unit *ast.Unit) ([]byte, error) {
	g.units = append(g.units, unit)
	return g.out, g.err
}

// incUnit declares fun inc(x: Int): Int = x + 1, with body as its returned value
func incUnit(body ast.Expr) *ast.Unit {
	return &ast.Unit{Package: "test", Name: "Test", Functions: []*ast.MethodDecl{{
		Name:   "inc",
		Return: ast.Named("Int"),
		Params: []*ast.ParamDecl{{Name: "x", Type: ast.Named("Int")}},
		Body:   &ast.Block{Stmts: []ast.Stmt{&ast.Return{Value: body}}},
	}}}
}

func plusOne() *ast.MethodCall {
	return &ast.MethodCall{
		Receiver: &ast.FieldAccess{Name: "x"},
		Name:     "+",
		Args:     []*ast.Argument{{Value: &ast.Literal{Kind: ast.LitInt, Value: int64(1)}}},
		Applied:  true,
	}
}

func TestCompileEmits(t *testing.T) {
	gen := &recordingGenerator{out: []byte("program")}
	unit := incUnit(plusOne())

	res, err := Compile(unit, universe.New(), Options{Generator: gen})
	require.NoError(t, err)
	assert.Zero(t, res.Diagnostics.Len())
	assert.Equal(t, PhaseEmit, res.Reached)
	assert.True(t, res.Emitted())
	assert.Equal(t, []byte("program"), res.Output)
	assert.Equal(t, []*ast.Unit{unit}, gen.units)
	require.NotNil(t, res.Header)
	assert.Len(t, res.Header.Class().OwnMethods("inc"), 1)
}

func TestCompileSkipsEmitOnErrors(t *testing.T) {
	gen := &recordingGenerator{out: []byte("program")}

	res, err := Compile(incUnit(&ast.FieldAccess{Name: "missing"}), universe.New(), Options{Generator: gen})
	require.NoError(t, err, "problems in the unit are diagnostics")
	assert.True(t, res.Diagnostics.HasError())
	assert.Equal(t, PhaseCleanup, res.Reached)
	assert.False(t, res.Emitted())
	assert.Nil(t, res.Output)
	assert.Empty(t, gen.units)
}

func TestCompileStopsAfterPhase(t *testing.T) {
	for _, phase := range []Phase{PhaseResolveTypes, PhaseResolve, PhaseCheckTypes, PhaseCleanup} {
		t.Run(phase.String(), func(t *testing.T) {
			gen := &recordingGenerator{out: []byte("program")}
			sum := plusOne()

			res, err := Compile(incUnit(sum), universe.New(), Options{Generator: gen, StopAfter: phase})
			require.NoError(t, err)
			assert.Equal(t, phase, res.Reached)
			assert.NotNil(t, res.Header)
			assert.False(t, res.Emitted())
			assert.Empty(t, gen.units)
			if phase < PhaseCheckTypes {
				assert.Nil(t, sum.Method, "calls are bound by checkTypes")
			} else {
				assert.NotNil(t, sum.Method)
			}
		})
	}
}

func TestCompileWithoutGenerator(t *testing.T) {
	res, err := Compile(incUnit(plusOne()), universe.New(), Options{})
	require.NoError(t, err)
	assert.Equal(t, PhaseEmit, res.Reached)
	assert.Nil(t, res.Output)
	assert.False(t, res.Emitted())
}

func TestCompileGeneratorError(t *testing.T) {
	gen := &recordingGenerator{err: errors.New("disk full")}

	res, err := Compile(incUnit(plusOne()), universe.New(), Options{Generator: gen})
	assert.Nil(t, res)
	assert.ErrorContains(t, err, "generating code for unit Test: disk full")
}

func TestCaptureOfUndeclaredBindingFailsCompilation(t *testing.T) {
	u := universe.New()
	b := u.Builtins()
	ghost := &types.Variable{Name: "ghost", Kind: types.VarLocal, Final: true, Type: b.Type(b.Int)}
	unit := &ast.Unit{Package: "test", Name: "Test", Functions: []*ast.MethodDecl{{
		Name:   "f",
		Return: ast.Named("Function0", ast.Named("Int")),
		Body: &ast.Block{Stmts: []ast.Stmt{&ast.Return{
			Value: &ast.Lambda{Body: &ast.FieldAccess{Name: "ghost", Member: ghost}},
		}}},
	}}}
	gen := &recordingGenerator{out: []byte("program")}

	var (
		res *Result
		err error
	)
	require.NotPanics(t, func() {
		res, err = Compile(unit, u, Options{Generator: gen})
	})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "during checkTypes")
	assert.Contains(t, err.Error(), "capture of 'ghost', which no enclosing scope declares")
	var failure *diag.Failure
	assert.ErrorAs(t, err, &failure)
	assert.Empty(t, gen.units)
}
