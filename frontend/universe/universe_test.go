package universe

import (
	"go/ast"
	"go/parser"
	"go/token"
	gotypes "go/types"
	"testing"

	"github.com/cottand/kiln/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	u := New()
	b := u.Builtins()

	c, ok := u.ResolveClass("kiln.lang.Int")
	require.True(t, ok)
	assert.Same(t, b.Int, c)
	assert.Equal(t, "kiln.lang.Int", c.QualifiedName())
	_, ok = u.ResolveClass("Int")
	assert.False(t, ok, "class names must be qualified")
	_, ok = u.ResolveClass("kiln.lang.Missing")
	assert.False(t, ok)

	assert.True(t, b.Int.IsSubclassOf(b.Number))
	assert.True(t, b.Number.IsAbstract())
	assert.Equal(t, types.Contravariant, b.Comparable.TypeParams[0].Variance)
	assert.Equal(t, types.Covariant, b.List.TypeParams[0].Variance)
	assert.Nil(t, b.Function(MaxFunctionArity+1))
	assert.Equal(t, "apply", b.Function(2).FunctionalMethod().Name)
	assert.Len(t, b.List.OwnMethods("of"), 3)
	assert.Len(t, b.Int.OwnMethods("+"), 3, "one per arithmetic operand type")

	fn, ok := b.FunctionType([]types.Type{b.Type(b.Int)}, b.Type(b.String))
	require.True(t, ok)
	assert.Equal(t, "Function1<Int, String>", fn.TypeName())
}

func TestPackages(t *testing.T) {
	u := New()
	p := u.Package("demo")
	require.NoError(t, p.Add(&types.Class{Name: "Box"}))
	assert.ErrorContains(t, p.Add(&types.Class{Name: "Box"}), "class Box already declared in package demo")
	assert.Same(t, p, u.Package("demo"))
	assert.Equal(t, []string{"demo", LangPackage}, u.Packages())

	box, ok := u.ResolveClass("demo.Box")
	require.True(t, ok)
	assert.Equal(t, "demo", box.Package)

	u.Seal()
	assert.NotNil(t, u.Builtins().List.ThisType())
}

const geoSource = `package geo

type Point struct {
	X, Y   int
	hidden string
}

func (p *Point) Norm() float64 { return 0 }

type Shape interface {
	Area() float64
}

const Pi = 3.14
const Max = 10

func Scale(p Point, k int32) Point { return p }

func Pair() (int, int) { return 0, 0 }

func First[T any](xs []T) T { return xs[0] }
`

func checkGo(t *testing.T, src string) *gotypes.Package {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "geo.go", src, 0)
	require.NoError(t, err)
	pkg, err := (&gotypes.Config{}).Check("example.com/geo", fset, []*ast.File{file}, nil)
	require.NoError(t, err)
	return pkg
}

func TestImportTypes(t *testing.T) {
	u := New()
	b := u.Builtins()
	pkg, err := u.ImportTypes(checkGo(t, geoSource))
	require.NoError(t, err)
	assert.Equal(t, "go.example.com/geo", pkg.Name)

	point := pkg.Class("Point")
	require.NotNil(t, point)
	require.NotNil(t, point.OwnField("X"))
	assert.Same(t, b.Long, types.ClassOf(point.OwnField("X").Type))
	assert.Nil(t, point.OwnField("hidden"))
	require.Len(t, point.OwnMethods("Norm"), 1)
	assert.Same(t, b.Double, types.ClassOf(point.OwnMethods("Norm")[0].Return))

	shape := pkg.Class("Shape")
	require.NotNil(t, shape)
	assert.True(t, shape.IsInterface())
	assert.Equal(t, "Area", shape.FunctionalMethod().Name)

	funcs := pkg.Class("Geo")
	require.NotNil(t, funcs)
	assert.True(t, funcs.Header)
	require.Len(t, funcs.OwnMethods("Scale"), 1)
	scale := funcs.OwnMethods("Scale")[0]
	assert.True(t, scale.IsStatic())
	assert.Same(t, point, types.ClassOf(scale.Params[0].Type))
	assert.Same(t, b.Int, types.ClassOf(scale.Params[1].Type))
	assert.Empty(t, funcs.OwnMethods("Pair"), "multiple results have no counterpart")

	first := funcs.OwnMethods("First")[0]
	require.Len(t, first.TypeParams, 1)
	assert.Equal(t, "List<T>", first.Params[0].Type.TypeName())

	assert.Equal(t, int64(10), funcs.OwnField("Max").Constant)
	assert.Equal(t, 3.14, funcs.OwnField("Pi").Constant)

	_, err = u.ImportTypes(checkGo(t, geoSource))
	assert.ErrorContains(t, err, "already imported")
}
