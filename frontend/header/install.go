package header

import (
	"fmt"
	"strings"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/syntax"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/pkg/errors"
)

// Install adds the classes of h to the package h.Package of u. Types may name
// the classes of h by their qualified name, and any class already in u.
//
// Install must not run while a unit is compiling against u.
func Install(u *universe.Universe, h *Header) ([]*types.Class, error) {
	pkg := u.Package(h.Package)
	in := &installer{u: u, pkg: pkg, own: map[string]*types.Class{}}

	classes := make([]*types.Class, len(h.Classes))
	for i, decl := range h.Classes {
		c, err := in.declare(decl)
		if err != nil {
			return nil, errors.Wrapf(err, "installing header %s", h)
		}
		classes[i] = c
	}
	for i, decl := range h.Classes {
		in.fill(classes[i], decl)
	}
	if len(in.errs) > 0 {
		return nil, errors.Wrapf(errors.New(strings.Join(in.errs, "; ")), "installing header %s", h)
	}
	for _, c := range classes {
		if err := pkg.Add(c); err != nil {
			return nil, errors.Wrapf(err, "installing header %s", h)
		}
	}
	return classes, nil
}

type installer struct {
	u    *universe.Universe
	pkg  *universe.Package
	own  map[string]*types.Class
	errs []string
}

func (in *installer) errorf(format string, args ...any) {
	in.errs = append(in.errs, fmt.Sprintf(format, args...))
}

func (in *installer) declare(decl *Class) (*types.Class, error) {
	if in.pkg.Class(decl.Name) != nil || in.own[decl.Name] != nil {
		return nil, fmt.Errorf("class %s already declared in package %s", decl.Name, in.pkg.Name)
	}
	c := &types.Class{
		Name:      decl.Name,
		Package:   in.pkg.Name,
		Modifiers: in.modifiers(decl.Modifiers, decl.Name),
		Header:    decl.Header,
	}
	switch decl.Kind {
	case "class":
		c.Kind = types.KindClass
	case "interface":
		c.Kind = types.KindInterface
	default:
		return nil, fmt.Errorf("class %s has unknown kind %q", decl.Name, decl.Kind)
	}
	c.TypeParams = in.newTypeParams(decl.TypeParams, c.QualifiedName())
	in.own[decl.Name] = c
	return c, nil
}

func (in *installer) newTypeParams(decls []*TypeParam, owner string) []*types.TypeParameter {
	params := make([]*types.TypeParameter, len(decls))
	for i, decl := range decls {
		variance := types.Invariant
		switch decl.Variance {
		case "", "invariant":
		case "covariant":
			variance = types.Covariant
		case "contravariant":
			variance = types.Contravariant
		default:
			in.errorf("%s: type parameter %s has unknown variance %q", owner, decl.Name, decl.Variance)
		}
		params[i] = types.NewTypeParameter(decl.Name, variance, i)
		params[i].Owner = owner
	}
	return params
}

// bind resolves the bounds of params, which may mention each other
func (in *installer) bind(params []*types.TypeParameter, decls []*TypeParam, env typeEnv) {
	for i, p := range params {
		var upper []types.Type
		for _, b := range decls[i].Upper {
			upper = append(upper, in.resolve(b, env))
		}
		var lower types.Type
		if decls[i].Lower != "" {
			lower = in.resolve(decls[i].Lower, env)
		}
		for _, problem := range p.Bind(upper, lower, in.u.Builtins().Top()) {
			in.errorf("%s: %s", p.Owner, problem.Reason)
		}
	}
}

func (in *installer) fill(c *types.Class, decl *Class) {
	env := typeEnv{}.with(c.TypeParams)
	in.bind(c.TypeParams, decl.TypeParams, env)

	if decl.Extends != "" {
		c.SuperType = in.resolve(decl.Extends, env)
	} else {
		c.SuperType = in.u.Builtins().Type(in.u.Builtins().Top())
	}
	for _, i := range decl.Implements {
		c.Interfaces = append(c.Interfaces, in.resolve(i, env))
	}
	for _, f := range decl.Fields {
		c.AddField(&types.Field{
			Name:      f.Name,
			Type:      in.resolve(f.Type, env),
			Modifiers: in.modifiers(f.Modifiers, c.Name+"."+f.Name),
			Constant:  constant(f.Constant),
		})
	}
	for _, m := range decl.Methods {
		owner := c.QualifiedName() + "." + m.Name
		method := &types.Method{
			Name:       m.Name,
			Modifiers:  in.modifiers(m.Modifiers, owner),
			TypeParams: in.newTypeParams(m.TypeParams, owner),
			Intrinsic:  m.Intrinsic,
		}
		methodEnv := env.with(method.TypeParams)
		in.bind(method.TypeParams, m.TypeParams, methodEnv)
		method.Params = in.params(m.Params, methodEnv)
		if m.Returns != "" {
			method.Return = in.resolve(m.Returns, methodEnv)
		} else {
			method.Return = types.Void
		}
		c.AddMethod(method)
	}
	for _, ctor := range decl.Constructors {
		c.AddConstructor(&types.Constructor{
			Params:    in.params(ctor.Params, env),
			Modifiers: in.modifiers(ctor.Modifiers, c.Name+".<init>"),
			Synthetic: ctor.Synthetic,
		})
	}
}

func (in *installer) params(decls []*Param, env typeEnv) []*types.Parameter {
	params := make([]*types.Parameter, len(decls))
	for i, p := range decls {
		params[i] = &types.Parameter{Name: p.Name, Type: in.resolve(p.Type, env)}
	}
	return params
}

func (in *installer) modifiers(s, where string) types.Modifiers {
	var mods types.Modifiers
	for _, name := range strings.Fields(s) {
		mod, ok := types.ParseModifier(name)
		if !ok {
			in.errorf("%s: unknown modifier %q", where, name)
		}
		mods |= mod
	}
	return mods
}

// typeEnv maps the names of the type parameters in scope
type typeEnv map[string]*types.TypeParameter

func (env typeEnv) with(params []*types.TypeParameter) typeEnv {
	next := make(typeEnv, len(env)+len(params))
	for name, p := range env {
		next[name] = p
	}
	for _, p := range params {
		next[p.Name] = p
	}
	return next
}

func (in *installer) resolve(s string, env typeEnv) types.Type {
	ref, err := syntax.ParseType(s)
	if err != nil {
		in.errorf("%v", err)
		return types.Unknown
	}
	return in.resolveRef(ref, env)
}

func (in *installer) resolveRef(ref ast.TypeRef, env typeEnv) types.Type {
	named, ok := ref.(*ast.NamedTypeRef)
	if !ok {
		in.errorf("function types are written as classes in headers")
		return types.Unknown
	}
	if p, ok := env[named.Name]; ok && len(named.Args) == 0 {
		return p.Var()
	}
	c := in.class(named.Name)
	if c == nil {
		in.errorf("unknown class %s", named.Name)
		return types.Unknown
	}
	if len(named.Args) != len(c.TypeParams) && len(named.Args) > 0 {
		in.errorf("%s takes %d type arguments, got %d", c.QualifiedName(), len(c.TypeParams), len(named.Args))
		return types.Unknown
	}
	args := make([]types.Type, len(named.Args))
	for i, arg := range named.Args {
		args[i] = in.resolveRef(arg, env)
	}
	return types.Apply(c, args...)
}

func (in *installer) class(qualified string) *types.Class {
	dot := strings.LastIndexByte(qualified, '.')
	if dot >= 0 && qualified[:dot] == in.pkg.Name {
		if c := in.own[qualified[dot+1:]]; c != nil {
			return c
		}
	}
	c, _ := in.u.ResolveClass(qualified)
	return c
}

// constant restores the representation of Field.Constant after decoding
func constant(v any) any {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int64, float64, bool, string:
		return v
	default:
		return nil
	}
}
