package sema

import (
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/resolve"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
)

// ResolveTypes declares the classes of the unit and its header class, resolves
// imports, supertypes, type parameter bounds and every member signature, and
// gives classes without a constructor a synthetic one.
//
// Supertypes are resolved before bounds so that bound checks on type
// arguments see the complete class hierarchy of the unit.
func (c *Checker) ResolveTypes() {
	c.declareHeader()
	c.header = scope.NewHeader(scope.NewGlobal(c.universe), c.unit.Header)
	c.classes = map[*ast.ClassDecl]*scope.Class{}

	c.declareClasses()
	c.resolveImports()
	c.resolveSupertypes()
	for _, decl := range c.unit.Classes {
		ctx := c.classContext(decl)
		for _, tp := range decl.TypeParams {
			resolve.BindBounds(ctx, tp, c.sink)
		}
	}
	c.declareMembers()
	c.checkVariance()
	c.logger.Debug("resolved types", "classes", len(c.unit.Classes), "diagnostics", c.sink.Len())
}

func (c *Checker) declareHeader() {
	if c.unit.Header != nil {
		return
	}
	c.unit.Header = &types.Class{
		Name:      c.unit.HeaderName(),
		Package:   c.unit.Package,
		Kind:      types.KindClass,
		Modifiers: types.Public | types.Final,
		Header:    true,
		SuperType: c.builtins.Type(c.builtins.Any),
		Pos:       c.unit.Pos(),
	}
}

func (c *Checker) declareClasses() {
	declared := map[string]bool{}
	for _, decl := range c.unit.Classes {
		fresh := decl.Class == nil
		if fresh {
			decl.Class = c.newClass(decl)
		}
		if declared[decl.Name] {
			if fresh {
				c.report(diag.NewRedeclared{Range: decl.Range, Name: decl.Name})
			}
			continue
		}
		declared[decl.Name] = true
		c.header.Declare(decl.Class)
	}
}

func (c *Checker) newClass(decl *ast.ClassDecl) *types.Class {
	class := &types.Class{
		Name:      decl.Name,
		Package:   c.unit.Package,
		Kind:      decl.Kind,
		Modifiers: decl.Modifiers,
		Pos:       decl.Pos(),
	}
	if class.Kind == 0 {
		class.Kind = types.KindClass
	}
	class.TypeParams = c.newTypeParams(decl.TypeParams, class.QualifiedName())
	return class
}

func (c *Checker) newTypeParams(decls []*ast.TypeParamDecl, owner string) []*types.TypeParameter {
	params := make([]*types.TypeParameter, 0, len(decls))
	names := map[string]bool{}
	for i, decl := range decls {
		if names[decl.Name] {
			c.report(diag.NewRedeclared{Range: decl.Range, Name: decl.Name})
		}
		names[decl.Name] = true
		p := types.NewTypeParameter(decl.Name, decl.Variance, i)
		p.Owner = owner
		decl.Param = p
		params = append(params, p)
	}
	return params
}

func (c *Checker) resolveImports() {
	for _, imp := range c.unit.Imports {
		if imp.Wildcard {
			p, ok := c.universe.ResolvePackage(imp.Path)
			if !ok {
				c.report(diag.NewUnresolvedImport{Range: imp.Range, Path: imp.Path})
				continue
			}
			c.header.ImportAll(p)
			continue
		}
		if imp.Class == nil {
			class, ok := c.universe.ResolveClass(imp.Path)
			if !ok {
				c.report(diag.NewUnresolvedImport{Range: imp.Range, Path: imp.Path})
				continue
			}
			imp.Class = class
		}
		c.header.Import(imp.LocalName(), imp.Class)
	}
}

func (c *Checker) resolveSupertypes() {
	anyType := c.builtins.Type(c.builtins.Any)
	for _, decl := range c.unit.Classes {
		class := decl.Class
		if class.SuperType != nil {
			continue
		}
		ctx := c.classContext(decl)
		super := anyType
		var interfaces []types.Type
		if decl.SuperType != nil {
			t := resolve.Type(ctx, decl.SuperType, c.sink)
			superClass := types.ClassOf(t)
			switch {
			case types.IsUnknown(t):
			case superClass == nil:
				c.report(diag.NewInvalidSupertype{Range: ast.RangeOf(decl.SuperType), Class: class.Name, Super: t, Reason: "not a class"})
			case superClass.IsInterface():
				interfaces = append(interfaces, t)
			case class.IsInterface():
				c.report(diag.NewInvalidSupertype{Range: ast.RangeOf(decl.SuperType), Class: class.Name, Super: t, Reason: "an interface can only extend interfaces"})
			default:
				super = t
			}
		}
		for _, ref := range decl.Interfaces {
			t := resolve.Type(ctx, ref, c.sink)
			if types.IsUnknown(t) {
				continue
			}
			if ifaceClass := types.ClassOf(t); ifaceClass == nil || !ifaceClass.IsInterface() {
				c.report(diag.NewInvalidSupertype{Range: ast.RangeOf(ref), Class: class.Name, Super: t, Reason: "not an interface"})
				continue
			}
			interfaces = append(interfaces, t)
		}
		class.SuperType = super
		class.Interfaces = interfaces
	}

	for _, decl := range c.unit.Classes {
		if inheritsFromItself(decl.Class) {
			c.report(diag.NewCyclicInheritance{Range: decl.Range, Class: decl.Name})
			decl.Class.SuperType = anyType
			decl.Class.Interfaces = nil
		}
	}
}

func inheritsFromItself(class *types.Class) bool {
	for _, super := range class.DirectSuperTypes() {
		if superClass := types.ClassOf(super); superClass != nil && superClass.IsSubclassOf(class) {
			return true
		}
	}
	return false
}

func (c *Checker) declareMembers() {
	for _, f := range c.unit.Fields {
		c.declareField(c.header, c.unit.Header, f, types.Static)
	}
	for _, m := range c.unit.Functions {
		c.declareMethod(c.header, c.unit.Header, m, types.Static)
	}
	for _, decl := range c.unit.Classes {
		ctx := c.classContext(decl)
		for _, f := range decl.Fields {
			c.declareField(ctx, decl.Class, f, 0)
		}
		for _, m := range decl.Methods {
			c.declareMethod(ctx, decl.Class, m, 0)
		}
		for _, ctor := range decl.Constructors {
			c.declareConstructor(ctx, decl, ctor)
		}
		c.synthesizeConstructor(decl)
	}
}

func (c *Checker) declareField(ctx scope.Context, owner *types.Class, decl *ast.FieldDecl, extra types.Modifiers) {
	if decl.Field != nil {
		return
	}
	var t types.Type
	switch {
	case decl.Type != nil:
		t = resolve.Type(ctx, decl.Type, c.sink)
	case decl.Init != nil:
		if lit, ok := decl.Init.(*ast.Literal); ok && lit.Kind != ast.LitNull {
			t = c.literalType(lit)
		}
	default:
		c.report(diag.NewMissingType{Range: decl.Range, Name: decl.Name})
		t = types.Unknown
	}
	f := &types.Field{Name: decl.Name, Type: t, Modifiers: decl.Modifiers | extra, Pos: decl.Pos()}
	if owner.OwnField(decl.Name) != nil {
		c.report(diag.NewRedeclared{Range: decl.Range, Name: decl.Name})
		f.Owner = owner
	} else {
		owner.AddField(f)
	}
	decl.Field = f
}

func (c *Checker) declareMethod(ctx scope.Context, owner *types.Class, decl *ast.MethodDecl, extra types.Modifiers) {
	if decl.Method != nil {
		return
	}
	mods := decl.Modifiers | extra
	if owner.IsInterface() && decl.Body == nil {
		mods |= types.Abstract
	}
	m := &types.Method{Name: decl.Name, Owner: owner, Modifiers: mods, Pos: decl.Pos()}
	m.TypeParams = c.newTypeParams(decl.TypeParams, owner.QualifiedName()+"."+decl.Name)
	methodCtx := scope.NewMethod(ctx, m, nil)
	for _, tp := range decl.TypeParams {
		resolve.BindBounds(methodCtx, tp, c.sink)
	}
	m.Params = c.declareParams(methodCtx, decl.Params)
	m.Return = resolve.Type(methodCtx, decl.Return, c.sink)

	for _, other := range owner.OwnMethods(decl.Name) {
		if types.SameSignature(types.MethodView{Method: m}, types.MethodView{Method: other}) {
			c.report(diag.NewRedeclared{Range: decl.Range, Name: m.Signature()})
			decl.Method = m
			return
		}
	}
	owner.AddMethod(m)
	decl.Method = m
}

func (c *Checker) declareConstructor(ctx scope.Context, class *ast.ClassDecl, decl *ast.ConstructorDecl) {
	if decl.Constructor != nil {
		return
	}
	ctor := &types.Constructor{Modifiers: decl.Modifiers, Pos: decl.Pos()}
	ctor.Params = c.declareParams(ctx, decl.Params)
	if class.Class.IsInterface() {
		c.report(diag.NewModifierConflict{Range: decl.Range, Subject: class.Name, Reason: "interfaces cannot declare constructors"})
		ctor.Owner = class.Class
	} else {
		class.Class.AddConstructor(ctor)
	}
	decl.Constructor = ctor
}

// synthesizeConstructor gives a class declaring no constructor one taking
// its instance fields without an initializer, in declaration order
func (c *Checker) synthesizeConstructor(decl *ast.ClassDecl) {
	class := decl.Class
	if class.IsInterface() || len(decl.Constructors) > 0 || len(class.Constructors) > 0 {
		return
	}
	ctor := &types.Constructor{Modifiers: types.Public, Synthetic: true, Pos: decl.Pos()}
	for _, f := range decl.Fields {
		if f.Init != nil || f.Field == nil || f.Field.IsStatic() {
			continue
		}
		ctor.Params = append(ctor.Params, &types.Parameter{Name: f.Name, Type: f.Field.Type})
	}
	class.AddConstructor(ctor)
}

func (c *Checker) declareParams(ctx scope.Context, decls []*ast.ParamDecl) []*types.Parameter {
	params := make([]*types.Parameter, len(decls))
	names := map[string]bool{}
	for i, decl := range decls {
		if names[decl.Name] {
			c.report(diag.NewRedeclared{Range: decl.Range, Name: decl.Name})
		}
		names[decl.Name] = true
		var t types.Type = types.Unknown
		if decl.Type != nil {
			t = resolve.Type(ctx, decl.Type, c.sink)
		} else {
			c.report(diag.NewMissingType{Range: decl.Range, Name: decl.Name})
		}
		if decl.Variable == nil {
			decl.Variable = &types.Variable{Name: decl.Name, Type: t, Kind: types.VarParameter, Final: true, Index: i, Pos: decl.Pos()}
		}
		params[i] = &types.Parameter{Name: decl.Name, Type: t}
	}
	return params
}

// checkVariance reports declaration-site variance that the members of a
// class contradict: a covariant parameter may only be produced, a
// contravariant one only consumed
func (c *Checker) checkVariance() {
	for _, decl := range c.unit.Classes {
		class := decl.Class
		owned := map[*types.TypeParameter]bool{}
		for _, p := range class.TypeParams {
			if p.Variance != types.Invariant {
				owned[p] = true
			}
		}
		if len(owned) == 0 {
			continue
		}
		walk := func(at ast.Positioner, member string, t types.Type, position types.Variance) {
			types.WalkVariance(t, position, func(p *types.TypeParameter, pos types.Variance) {
				if owned[p] && !p.Variance.Allows(pos) {
					c.report(diag.NewVarianceViolation{Range: ast.RangeOf(at), Param: p, Position: pos, Member: member})
				}
			})
		}
		for _, f := range decl.Fields {
			if f.Field == nil || f.Modifiers.Has(types.Private) {
				continue
			}
			position := types.Covariant
			if !f.Modifiers.Has(types.Final) {
				position = types.Invariant
			}
			walk(f, f.Name, f.Field.Type, position)
		}
		for _, m := range decl.Methods {
			if m.Method == nil || m.Modifiers.Has(types.Private) {
				continue
			}
			for _, p := range m.Method.Params {
				walk(m, m.Name, p.Type, types.Contravariant)
			}
			walk(m, m.Name, m.Method.Return, types.Covariant)
		}
	}
}

func (c *Checker) literalType(lit *ast.Literal) types.Type {
	b := c.builtins
	switch lit.Kind {
	case ast.LitInt:
		return b.Type(b.Int)
	case ast.LitLong:
		return b.Type(b.Long)
	case ast.LitDouble:
		return b.Type(b.Double)
	case ast.LitBool:
		return b.Type(b.Boolean)
	case ast.LitString:
		return b.Type(b.String)
	case ast.LitNull:
		return types.Null
	default:
		diag.Fail("unexpected literal kind %v", lit.Kind)
		return nil
	}
}
