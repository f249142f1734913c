package kiln

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/cottand/kiln/frontend"
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/header"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testError(t *testing.T, prog string, shouldContain ...string) {
	pkg, err := NewPackageFromBytes([]byte(prog), "test.yaml")
	require.NoError(t, err)
	require.True(t, pkg.HasError())

	errMsg := strings.Join(pkg.Diagnostics(), "\n-----------\n")
	for _, s := range shouldContain {
		assert.Contains(t, errMsg, s)
	}
	t.Log("error message:\n" + errMsg)
}

func TestErrorPositionOfName(t *testing.T) {
	prog := `package: main
functions:
  - name: f
    returns: Int
    body: {op: ["+", missing, 1]}
`
	testError(t, prog, "test.yaml:5:22: error[resolve.name]: 'missing' is not defined")
}

func TestErrorsDoNotCascade(t *testing.T) {
	prog := `package: main
functions:
  - name: f
    returns: Int
    body: {op: ["*", {op: ["+", missing, 1]}, 2]}
`
	pkg, err := NewPackageFromBytes([]byte(prog), "test.yaml")
	require.NoError(t, err)
	assert.Len(t, pkg.Diagnostics(), 1)
}

func TestDecodeErrorsFailTheLoad(t *testing.T) {
	_, err := NewPackageFromBytes([]byte("package: main\nfunctions: 3\n"), "test.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a list")
}

const shapes = `package: shapes
name: Shapes
classes:
  - name: Square
    fields:
      - {name: side, type: Int, modifiers: [final]}
    methods:
      - name: area
        returns: Int
        body: {op: ["*", side, side]}
functions:
  - name: unit
    returns: Square
    body: {new: {type: Square, args: [1]}}
`

const numbers = `package: shapes
name: Numbers
functions:
  - name: twice
    typeParams: [T]
    params: ["x: T"]
    returns: kiln.lang.List<T>
    body: {call: {on: kiln.lang.List, name: of, args: [x, x]}}
`

func TestLoadPackageCompilesEveryUnit(t *testing.T) {
	filesystem := fstest.MapFS{
		"src/shapes.yaml":  {Data: []byte(shapes)},
		"src/numbers.yaml": {Data: []byte(numbers)},
		"src/README.md":    {Data: []byte("not a unit")},
	}
	pkg, err := LoadPackage(context.Background(), filesystem, LoadSettings{Dir: "src"})
	require.NoError(t, err)
	require.Len(t, pkg.Units(), 2)
	assert.False(t, pkg.HasError(), "%v", pkg.Diagnostics())

	// units are read in file name order
	assert.Equal(t, "numbers.yaml", pkg.Units()[0].File)
	assert.Equal(t, "Numbers", pkg.Units()[0].Syntax.Name)
	for _, u := range pkg.Units() {
		assert.Equal(t, frontend.PhaseEmit, u.Result.Reached)
	}
}

func TestHeadersLetOtherPackagesCompile(t *testing.T) {
	lib, err := LoadPackage(context.Background(), fstest.MapFS{"shapes.yaml": {Data: []byte(shapes)}}, LoadSettings{})
	require.NoError(t, err)
	headers, err := lib.Headers()
	require.NoError(t, err)
	require.Len(t, headers, 1)

	u := universe.New()
	for _, h := range headers {
		_, err := header.Install(u, h)
		require.NoError(t, err)
	}

	client := `package: app
imports: [shapes.Square]
functions:
  - name: size
    params: ["s: Square"]
    returns: Int
    body: {call: {on: s, name: area}}
`
	pkg, err := LoadPackage(context.Background(), fstest.MapFS{"app.yaml": {Data: []byte(client)}}, LoadSettings{Universe: u})
	require.NoError(t, err)
	assert.False(t, pkg.HasError(), "%v", pkg.Diagnostics())
}

func TestCompileAllHonoursCancellation(t *testing.T) {
	pkg, err := NewPackageFromBytes([]byte(shapes), "shapes.yaml")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	unit := pkg.Units()[0].Syntax
	_, err = CompileAll(ctx, []*ast.Unit{unit}, universe.New(), frontend.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
