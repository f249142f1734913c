package universe

import (
	"fmt"

	"github.com/cottand/kiln/frontend/types"
)

// Builtins are the classes of kiln.lang the compiler itself refers to
type Builtins struct {
	Any        *types.Class
	Number     *types.Class
	Comparable *types.Class
	Byte       *types.Class
	Short      *types.Class
	Int        *types.Class
	Long       *types.Class
	Double     *types.Class
	Boolean    *types.Class
	String     *types.Class
	List       *types.Class

	functions []*types.Class
}

// MaxFunctionArity is the number of parameters of the largest FunctionN interface
const MaxFunctionArity = 2

// Function returns the FunctionN interface of the given arity, nil if there is none
func (b *Builtins) Function(arity int) *types.Class {
	if arity < 0 || arity >= len(b.functions) {
		return nil
	}
	return b.functions[arity]
}

// FunctionType is the type of functions taking params and returning ret
func (b *Builtins) FunctionType(params []types.Type, ret types.Type) (types.Type, bool) {
	c := b.Function(len(params))
	if c == nil {
		return types.Unknown, false
	}
	args := make([]types.Type, 0, len(params)+1)
	args = append(args, params...)
	return types.Apply(c, append(args, ret)...), true
}

// Top is the class every class inherits from
func (b *Builtins) Top() *types.Class { return b.Any }

func (b *Builtins) Type(c *types.Class) types.Type { return &types.ClassType{Class: c} }

type builder struct {
	pkg *Package
}

func (bd builder) class(name string, kind types.ClassKind, mods types.Modifiers, primitive byte) *types.Class {
	c := &types.Class{Name: name, Kind: kind, Modifiers: mods | types.Public, Primitive: primitive}
	if err := bd.pkg.Add(c); err != nil {
		panic(err)
	}
	return c
}

func typeParam(owner *types.Class, name string, variance types.Variance, top *types.Class, bounds ...types.Type) *types.TypeParameter {
	p := types.NewTypeParameter(name, variance, len(owner.TypeParams))
	p.Owner = owner.QualifiedName()
	p.Bind(bounds, nil, top)
	owner.TypeParams = append(owner.TypeParams, p)
	return p
}

func params(pairs ...any) []*types.Parameter {
	ps := make([]*types.Parameter, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		ps = append(ps, &types.Parameter{Name: pairs[i].(string), Type: pairs[i+1].(types.Type)})
	}
	return ps
}

func intrinsic(c *types.Class, name, op string, ret types.Type, ps ...*types.Parameter) *types.Method {
	return c.AddMethod(&types.Method{
		Name:      name,
		Params:    ps,
		Return:    ret,
		Modifiers: types.Public | types.Final,
		Intrinsic: op,
	})
}

func abstract(c *types.Class, name string, ret types.Type, ps ...*types.Parameter) *types.Method {
	return c.AddMethod(&types.Method{
		Name:      name,
		Params:    ps,
		Return:    ret,
		Modifiers: types.Public | types.Abstract,
	})
}

// installBuiltins declares the classes of kiln.lang:
//
//	class Any                         ==, !=, toString, hashCode
//	abstract class Number             toInt, toLong, toDouble
//	interface Comparable<-T>          compareTo
//	Byte, Short, Int, Long, Double    primitives, arithmetic and comparisons
//	Boolean, String
//	interface Function0..2            apply
//	class List<+T>                    get, size, map, and the static of and empty
//
// Narrower numeric primitives implicitly convert to wider ones.
func installBuiltins(p *Package) *Builtins {
	bd := builder{pkg: p}
	b := &Builtins{}

	b.Any = bd.class("Any", types.KindClass, 0, 0)
	b.Number = bd.class("Number", types.KindClass, types.Abstract, 0)
	b.Comparable = bd.class("Comparable", types.KindInterface, 0, 0)
	b.Byte = bd.class("Byte", types.KindClass, types.Final, 'B')
	b.Short = bd.class("Short", types.KindClass, types.Final, 'S')
	b.Int = bd.class("Int", types.KindClass, types.Final, 'I')
	b.Long = bd.class("Long", types.KindClass, types.Final, 'J')
	b.Double = bd.class("Double", types.KindClass, types.Final, 'D')
	b.Boolean = bd.class("Boolean", types.KindClass, types.Final, 'Z')
	b.String = bd.class("String", types.KindClass, types.Final, 0)
	for arity := 0; arity <= MaxFunctionArity; arity++ {
		b.functions = append(b.functions, bd.class(fmt.Sprint("Function", arity), types.KindInterface, 0, 0))
	}
	b.List = bd.class("List", types.KindClass, types.Final, 0)

	anyT := b.Type(b.Any)
	boolT, stringT := b.Type(b.Boolean), b.Type(b.String)
	intT, longT, doubleT := b.Type(b.Int), b.Type(b.Long), b.Type(b.Double)

	intrinsic(b.Any, "==", "eq", boolT, params("other", anyT)...)
	intrinsic(b.Any, "!=", "ne", boolT, params("other", anyT)...)
	b.Any.AddMethod(&types.Method{Name: "toString", Return: stringT, Modifiers: types.Public, Intrinsic: "toString"})
	b.Any.AddMethod(&types.Method{Name: "hashCode", Return: intT, Modifiers: types.Public, Intrinsic: "hashCode"})

	b.Number.SuperType = anyT
	abstract(b.Number, "toInt", intT)
	abstract(b.Number, "toLong", longT)
	abstract(b.Number, "toDouble", doubleT)

	b.Comparable.SuperType = anyT
	cmp := typeParam(b.Comparable, "T", types.Contravariant, b.Any)
	abstract(b.Comparable, "compareTo", intT, params("other", cmp.Var())...)

	numerics := []*types.Class{b.Byte, b.Short, b.Int, b.Long, b.Double}
	for _, c := range numerics {
		self := b.Type(c)
		c.SuperType = b.Type(b.Number)
		c.Interfaces = []types.Type{types.Apply(b.Comparable, self)}
		intrinsic(c, "compareTo", "compare", intT, params("other", self)...)
		intrinsic(c, "toInt", "toInt", intT)
		intrinsic(c, "toLong", "toLong", longT)
		intrinsic(c, "toDouble", "toDouble", doubleT)
	}

	// arithmetic is declared for Int, Long and Double, against each other,
	// returning the wider of both
	arithmetic := []*types.Class{b.Int, b.Long, b.Double}
	operators := []struct{ name, op string }{
		{"+", "add"}, {"-", "sub"}, {"*", "mul"}, {"/", "div"}, {"%", "rem"},
	}
	comparisons := []struct{ name, op string }{
		{"<", "lt"}, {"<=", "le"}, {">", "gt"}, {">=", "ge"},
	}
	for i, c := range arithmetic {
		for j, other := range arithmetic {
			wider := arithmetic[max(i, j)]
			for _, operator := range operators {
				intrinsic(c, operator.name, operator.op, b.Type(wider), params("other", b.Type(other))...)
			}
			for _, comparison := range comparisons {
				intrinsic(c, comparison.name, comparison.op, boolT, params("other", b.Type(other))...)
			}
		}
		intrinsic(c, "unaryMinus", "neg", b.Type(c))
	}

	conversions := []struct {
		from, to *types.Class
		op       string
	}{
		{b.Byte, b.Short, "b2s"}, {b.Byte, b.Int, "b2i"}, {b.Byte, b.Long, "b2l"}, {b.Byte, b.Double, "b2d"},
		{b.Short, b.Int, "s2i"}, {b.Short, b.Long, "s2l"}, {b.Short, b.Double, "s2d"},
		{b.Int, b.Long, "i2l"}, {b.Int, b.Double, "i2d"},
		{b.Long, b.Double, "l2d"},
	}
	for _, conv := range conversions {
		conv.from.AddMethod(&types.Method{
			Name:      conv.op,
			Params:    params("value", b.Type(conv.from)),
			Return:    b.Type(conv.to),
			Modifiers: types.Public | types.Static | types.Implicit,
			Intrinsic: conv.op,
		})
	}

	b.Boolean.SuperType = anyT
	intrinsic(b.Boolean, "&&", "and", boolT, params("other", boolT)...)
	intrinsic(b.Boolean, "||", "or", boolT, params("other", boolT)...)
	intrinsic(b.Boolean, "!", "not", boolT)

	b.String.SuperType = anyT
	b.String.Interfaces = []types.Type{types.Apply(b.Comparable, stringT)}
	intrinsic(b.String, "+", "concat", stringT, params("other", anyT)...)
	intrinsic(b.String, "length", "length", intT)
	intrinsic(b.String, "compareTo", "compare", intT, params("other", stringT)...)

	for arity, fn := range b.functions {
		fn.SuperType = anyT
		var ps []*types.Parameter
		for i := 0; i < arity; i++ {
			param := typeParam(fn, fmt.Sprint("P", i+1), types.Contravariant, b.Any)
			ps = append(ps, &types.Parameter{Name: fmt.Sprint("p", i+1), Type: param.Var()})
		}
		ret := typeParam(fn, "R", types.Covariant, b.Any)
		abstract(fn, "apply", ret.Var(), ps...)
	}

	installList(b)
	return b
}

func installList(b *Builtins) {
	list := b.List
	list.SuperType = b.Type(b.Any)
	elem := typeParam(list, "T", types.Covariant, b.Any)
	intT := b.Type(b.Int)

	intrinsic(list, "get", "list.get", elem.Var(), params("index", intT)...)
	intrinsic(list, "size", "list.size", intT)

	mapped := types.NewTypeParameter("R", types.Invariant, 0)
	mapped.Owner = list.QualifiedName() + ".map"
	mapped.Bind(nil, nil, b.Any)
	list.AddMethod(&types.Method{
		Name:       "map",
		TypeParams: []*types.TypeParameter{mapped},
		Params:     params("f", types.Apply(b.Function(1), elem.Var(), mapped.Var())),
		Return:     types.Apply(list, mapped.Var()),
		Modifiers:  types.Public | types.Final,
		Intrinsic:  "list.map",
	})

	// the static factories declare their own element type parameter
	factory := func(arity int) {
		t := types.NewTypeParameter("E", types.Invariant, 0)
		t.Owner = list.QualifiedName() + ".of"
		t.Bind(nil, nil, b.Any)
		var ps []*types.Parameter
		for i := 0; i < arity; i++ {
			ps = append(ps, &types.Parameter{Name: fmt.Sprint("e", i+1), Type: t.Var()})
		}
		name := "of"
		if arity == 0 {
			name = "empty"
		}
		list.AddMethod(&types.Method{
			Name:       name,
			TypeParams: []*types.TypeParameter{t},
			Params:     ps,
			Return:     types.Apply(list, t.Var()),
			Modifiers:  types.Public | types.Static,
			Intrinsic:  "list.of",
		})
	}
	for arity := 0; arity <= 3; arity++ {
		factory(arity)
	}
}
