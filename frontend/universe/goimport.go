package universe

import (
	"fmt"
	"go/constant"
	gotypes "go/types"
	"strings"
	"unicode"

	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/internal/log"
	"github.com/pkg/errors"
	gopackages "golang.org/x/tools/go/packages"
)

// GoPackagePrefix is prepended to the path of an imported Go package to name
// the kiln package it becomes, so that Go's strings is go.strings
const GoPackagePrefix = "go."

var importLogger = log.DefaultLogger.With("section", "universe.goimport")

func goLoadPkgsConfig() *gopackages.Config {
	return &gopackages.Config{
		Mode: gopackages.NeedName | gopackages.NeedImports | gopackages.NeedDeps | gopackages.NeedTypes,
	}
}

// ImportGo loads the Go packages matching patterns with the go tool and
// installs their exported declarations, see ImportTypes
func (u *Universe) ImportGo(patterns ...string) ([]*Package, error) {
	goPkgs, err := gopackages.Load(goLoadPkgsConfig(), patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load Go packages")
	}
	var problems []string
	for _, goPkg := range goPkgs {
		for _, e := range goPkg.Errors {
			problems = append(problems, fmt.Sprintf("%s: %s", goPkg.PkgPath, e.Msg))
		}
	}
	if len(problems) > 0 {
		return nil, errors.Errorf("errors when loading Go packages:\n  %s", strings.Join(problems, "\n  "))
	}
	imported := make([]*Package, 0, len(goPkgs))
	for _, goPkg := range goPkgs {
		pkg, err := u.ImportTypes(goPkg.Types)
		if err != nil {
			return imported, err
		}
		imported = append(imported, pkg)
	}
	return imported, nil
}

// ImportTypes installs the exported declarations of a type-checked Go
// package as the kiln package go.<path>:
//
//   - named struct types become classes with their exported fields and methods
//   - named interface types become interfaces with abstract methods
//   - functions, constants and variables become static members of a class
//     named after the package, such as Strings for strings
//
// Members whose signature mentions a Go type with no kiln counterpart, or
// that return more than one value, are skipped.
func (u *Universe) ImportTypes(goPkg *gotypes.Package) (*Package, error) {
	name := GoPackagePrefix + goPkg.Path()
	if _, exists := u.packages[name]; exists {
		return nil, errors.Errorf("Go package %s is already imported", goPkg.Path())
	}
	imp := &goImporter{
		universe: u,
		pkg:      u.Package(name),
		classes:  map[*gotypes.TypeName]*types.Class{},
	}
	if err := imp.run(goPkg); err != nil {
		return nil, err
	}
	importLogger.Debug("imported Go package", "package", name, "classes", len(imp.pkg.Classes()), "skipped", imp.skipped)
	return imp.pkg, nil
}

type goImporter struct {
	universe *Universe
	pkg      *Package
	classes  map[*gotypes.TypeName]*types.Class
	skipped  int
}

type typeParamScope map[*gotypes.TypeParam]*types.TypeParameter

func (imp *goImporter) run(goPkg *gotypes.Package) error {
	scope := goPkg.Scope()
	b := imp.universe.Builtins()
	var named []*gotypes.TypeName

	// shells first, so that declarations can refer to each other
	for _, objName := range scope.Names() {
		typeName, ok := scope.Lookup(objName).(*gotypes.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}
		kind := types.KindClass
		if gotypes.IsInterface(typeName.Type()) {
			kind = types.KindInterface
		}
		c := &types.Class{Name: typeName.Name(), Kind: kind, Modifiers: types.Public, SuperType: b.Type(b.Any), Pos: typeName.Pos()}
		if err := imp.pkg.Add(c); err != nil {
			return err
		}
		imp.classes[typeName] = c
		named = append(named, typeName)
	}

	for _, typeName := range named {
		imp.fillClass(typeName, imp.classes[typeName])
	}

	funcsName := exportedName(goPkg.Name())
	if imp.pkg.Class(funcsName) != nil {
		funcsName += "Funcs"
	}
	funcs := &types.Class{Name: funcsName, Kind: types.KindClass, Modifiers: types.Public | types.Final, SuperType: b.Type(b.Any), Header: true}
	for _, objName := range scope.Names() {
		obj := scope.Lookup(objName)
		if !obj.Exported() {
			continue
		}
		switch obj := obj.(type) {
		case *gotypes.Func:
			sig := obj.Type().(*gotypes.Signature)
			if m, ok := imp.method(obj.Name(), sig, sig.TypeParams(), typeParamScope{}); ok {
				m.Modifiers |= types.Static
				m.Pos = obj.Pos()
				funcs.AddMethod(m)
			}
		case *gotypes.Const:
			if f, ok := imp.constant(obj); ok {
				funcs.AddField(f)
			}
		case *gotypes.Var:
			if t, ok := imp.convert(obj.Type(), typeParamScope{}); ok {
				funcs.AddField(&types.Field{Name: obj.Name(), Type: t, Modifiers: types.Public | types.Static, Pos: obj.Pos()})
			} else {
				imp.skipped++
			}
		}
	}
	if len(funcs.Methods) > 0 || len(funcs.Fields) > 0 {
		return imp.pkg.Add(funcs)
	}
	return nil
}

func (imp *goImporter) fillClass(typeName *gotypes.TypeName, c *types.Class) {
	goNamed, ok := typeName.Type().(*gotypes.Named)
	if !ok {
		return
	}
	scope := typeParamScope{}
	imp.typeParams(goNamed.TypeParams(), scope, c.QualifiedName(), func(p *types.TypeParameter) {
		c.TypeParams = append(c.TypeParams, p)
	})

	switch underlying := goNamed.Underlying().(type) {
	case *gotypes.Struct:
		for i := 0; i < underlying.NumFields(); i++ {
			field := underlying.Field(i)
			if !field.Exported() || field.Embedded() {
				continue
			}
			t, ok := imp.convert(field.Type(), scope)
			if !ok {
				imp.skipped++
				continue
			}
			c.AddField(&types.Field{Name: field.Name(), Type: t, Modifiers: types.Public, Pos: field.Pos()})
		}
	case *gotypes.Interface:
		for i := 0; i < underlying.NumMethods(); i++ {
			fn := underlying.Method(i)
			if !fn.Exported() {
				continue
			}
			if m, ok := imp.method(fn.Name(), fn.Type().(*gotypes.Signature), nil, scope); ok {
				m.Modifiers |= types.Abstract
				m.Pos = fn.Pos()
				c.AddMethod(m)
			}
		}
		return
	}

	methodSet := gotypes.NewMethodSet(gotypes.NewPointer(goNamed))
	for i := 0; i < methodSet.Len(); i++ {
		fn, ok := methodSet.At(i).Obj().(*gotypes.Func)
		if !ok || !fn.Exported() {
			continue
		}
		sig := fn.Type().(*gotypes.Signature)
		// methods of generic types declare their own receiver type parameters
		methodScope := typeParamScope{}
		for k, v := range scope {
			methodScope[k] = v
		}
		if recvParams := sig.RecvTypeParams(); recvParams != nil {
			for j := 0; j < recvParams.Len() && j < len(c.TypeParams); j++ {
				methodScope[recvParams.At(j)] = c.TypeParams[j]
			}
		}
		if m, ok := imp.method(fn.Name(), sig, nil, methodScope); ok {
			m.Pos = fn.Pos()
			c.AddMethod(m)
		}
	}
}

func (imp *goImporter) typeParams(list *gotypes.TypeParamList, scope typeParamScope, owner string, add func(*types.TypeParameter)) {
	if list == nil {
		return
	}
	params := make([]*types.TypeParameter, list.Len())
	for i := 0; i < list.Len(); i++ {
		goParam := list.At(i)
		p := types.NewTypeParameter(goParam.Obj().Name(), types.Invariant, i)
		p.Owner = owner
		scope[goParam] = p
		params[i] = p
		add(p)
	}
	// bounds may mention any of the parameters
	for i, p := range params {
		var bounds []types.Type
		if constraint, ok := imp.convert(list.At(i).Constraint(), scope); ok && types.ClassOf(constraint) != imp.universe.Builtins().Any {
			bounds = append(bounds, constraint)
		}
		p.Bind(bounds, nil, imp.universe.Builtins().Any)
	}
}

func (imp *goImporter) method(name string, sig *gotypes.Signature, typeParams *gotypes.TypeParamList, outer typeParamScope) (*types.Method, bool) {
	if sig.Results().Len() > 1 || sig.Variadic() {
		imp.skipped++
		return nil, false
	}
	m := &types.Method{Name: name, Modifiers: types.Public}
	scope := typeParamScope{}
	for k, v := range outer {
		scope[k] = v
	}
	imp.typeParams(typeParams, scope, imp.pkg.Name+"."+name, func(p *types.TypeParameter) {
		m.TypeParams = append(m.TypeParams, p)
	})
	for i := 0; i < sig.Params().Len(); i++ {
		param := sig.Params().At(i)
		t, ok := imp.convert(param.Type(), scope)
		if !ok {
			imp.skipped++
			return nil, false
		}
		paramName := param.Name()
		if paramName == "" || paramName == "_" {
			paramName = fmt.Sprint("p", i)
		}
		m.Params = append(m.Params, &types.Parameter{Name: paramName, Type: t})
	}
	if sig.Results().Len() == 1 {
		t, ok := imp.convert(sig.Results().At(0).Type(), scope)
		if !ok {
			imp.skipped++
			return nil, false
		}
		m.Return = t
	}
	return m, true
}

func (imp *goImporter) constant(obj *gotypes.Const) (*types.Field, bool) {
	t, ok := imp.convert(obj.Type(), typeParamScope{})
	if !ok {
		imp.skipped++
		return nil, false
	}
	var value any
	val := obj.Val()
	switch val.Kind() {
	case constant.Int:
		if v, exact := constant.Int64Val(val); exact {
			value = v
		}
	case constant.Float:
		value, _ = constant.Float64Val(val)
	case constant.Bool:
		value = constant.BoolVal(val)
	case constant.String:
		value = constant.StringVal(val)
	}
	return &types.Field{
		Name:      obj.Name(),
		Type:      t,
		Modifiers: types.Public | types.Static | types.Final,
		Constant:  value,
		Pos:       obj.Pos(),
	}, true
}

// convert maps a Go type to the kiln type representing it
func (imp *goImporter) convert(t gotypes.Type, scope typeParamScope) (types.Type, bool) {
	b := imp.universe.Builtins()
	switch t := t.(type) {
	case *gotypes.Basic:
		switch t.Kind() {
		case gotypes.Bool, gotypes.UntypedBool:
			return b.Type(b.Boolean), true
		case gotypes.Int8, gotypes.Uint8:
			return b.Type(b.Byte), true
		case gotypes.Int16:
			return b.Type(b.Short), true
		case gotypes.Int32, gotypes.Uint16:
			return b.Type(b.Int), true
		case gotypes.Int, gotypes.Int64, gotypes.Uint, gotypes.Uint32, gotypes.Uint64, gotypes.UntypedInt:
			return b.Type(b.Long), true
		case gotypes.Float32, gotypes.Float64, gotypes.UntypedFloat:
			return b.Type(b.Double), true
		case gotypes.String, gotypes.UntypedString:
			return b.Type(b.String), true
		}
		return nil, false
	case *gotypes.Pointer:
		return imp.convert(t.Elem(), scope)
	case *gotypes.Slice:
		elem, ok := imp.convert(t.Elem(), scope)
		if !ok {
			return nil, false
		}
		return types.Apply(b.List, elem), true
	case *gotypes.TypeParam:
		p, ok := scope[t]
		if !ok {
			return nil, false
		}
		return p.Var(), true
	case *gotypes.Interface:
		if t.Empty() {
			return b.Type(b.Any), true
		}
		return nil, false
	case *gotypes.Signature:
		if t.Params().Len() > MaxFunctionArity || t.Results().Len() > 1 {
			return nil, false
		}
		params := make([]types.Type, t.Params().Len())
		for i := range params {
			p, ok := imp.convert(t.Params().At(i).Type(), scope)
			if !ok {
				return nil, false
			}
			params[i] = p
		}
		ret := b.Type(b.Any)
		if t.Results().Len() == 1 {
			r, ok := imp.convert(t.Results().At(0).Type(), scope)
			if !ok {
				return nil, false
			}
			ret = r
		}
		return b.FunctionType(params, ret)
	case *gotypes.Named:
		return imp.named(t, scope)
	case *gotypes.Alias:
		return imp.convert(gotypes.Unalias(t), scope)
	}
	return nil, false
}

func (imp *goImporter) named(t *gotypes.Named, scope typeParamScope) (types.Type, bool) {
	c, ok := imp.classes[t.Origin().Obj()]
	if !ok {
		if t.Obj().Pkg() == nil {
			// predeclared, like error
			if t.Obj().Name() == "error" {
				return imp.universe.Builtins().Type(imp.universe.Builtins().Any), true
			}
			return nil, false
		}
		c, ok = imp.universe.ResolveClass(GoPackagePrefix + t.Obj().Pkg().Path() + "." + t.Obj().Name())
		if !ok {
			return nil, false
		}
	}
	args := t.TypeArgs()
	if args == nil || args.Len() == 0 {
		if len(c.TypeParams) > 0 {
			// a generic type referred to by its own declaration
			return c.ThisType(), true
		}
		return &types.ClassType{Class: c}, true
	}
	converted := make([]types.Type, args.Len())
	for i := range converted {
		arg, ok := imp.convert(args.At(i), scope)
		if !ok {
			return nil, false
		}
		converted[i] = arg
	}
	return types.Apply(c, converted...), true
}

func exportedName(name string) string {
	if name == "" {
		return "Package"
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
