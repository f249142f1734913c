package sema

import (
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
)

// Check reports what is well typed but still not allowed: illegal modifier
// combinations, missing implementations, uses of members that are not
// visible, instantiations of abstract classes and assignments to final
// bindings. Uses of deprecated members are warnings.
func (c *Checker) Check() {
	for _, decl := range c.unit.Classes {
		c.checkClass(decl)
	}
	for _, m := range c.unit.Functions {
		if m.Modifiers.Has(types.Abstract) {
			c.report(diag.NewModifierConflict{Range: m.Range, Subject: m.Name, Reason: "top-level functions cannot be abstract"})
		} else if m.Body == nil {
			c.report(diag.NewModifierConflict{Range: m.Range, Subject: m.Name, Reason: "missing body"})
		}
	}

	c.walkBodies(bodies{
		field: func(ctx scope.Context, decl *ast.FieldDecl) {
			c.checkUses(ctx, decl.Init, false)
		},
		method: func(ctx scope.Context, decl *ast.MethodDecl) {
			c.checkUses(ctx, decl.Body, false)
		},
		constructor: func(ctx scope.Context, _ *ast.ClassDecl, decl *ast.ConstructorDecl) {
			c.checkUses(ctx, decl.Body, true)
		},
	})
	c.logger.Debug("checked declarations", "diagnostics", c.sink.Len())
}

func (c *Checker) checkClass(decl *ast.ClassDecl) {
	class := decl.Class
	if class.Modifiers.Has(types.Abstract | types.Final) {
		c.report(diag.NewModifierConflict{Range: decl.Range, Subject: decl.Name, Reason: "abstract classes cannot be final"})
	}
	if super := types.ClassOf(class.SuperType); super != nil && super.Modifiers.Has(types.Final) && !class.IsInterface() {
		c.report(diag.NewInvalidSupertype{Range: ast.RangeOf(decl.SuperType), Class: decl.Name, Super: class.SuperType, Reason: "it is final"})
	}

	for _, m := range decl.Methods {
		if m.Method != nil {
			c.checkMethodModifiers(decl, m)
		}
	}

	if class.IsAbstract() {
		return
	}
	var missing []string
	for _, m := range class.AbstractMethods() {
		if m.Owner != class {
			missing = append(missing, m.Owner.Name+"."+m.Signature())
		}
	}
	if len(missing) > 0 {
		c.report(diag.NewMissingImplementation{Range: decl.Range, Class: class, Methods: missing})
	}
}

func (c *Checker) checkMethodModifiers(class *ast.ClassDecl, decl *ast.MethodDecl) {
	m := decl.Method
	conflict := func(reason string) {
		c.report(diag.NewModifierConflict{Range: decl.Range, Subject: m.Signature(), Reason: reason})
	}
	if m.IsAbstract() {
		switch {
		case m.Modifiers.Has(types.Final):
			conflict("abstract methods cannot be final")
		case m.IsStatic():
			conflict("static methods cannot be abstract")
		case m.Modifiers.Has(types.Private):
			conflict("private methods cannot be abstract")
		case decl.Body != nil:
			conflict("abstract methods cannot have a body")
		case !class.Class.IsAbstract():
			conflict("abstract method in non-abstract class '" + class.Name + "'")
		}
	} else if decl.Body == nil {
		conflict("missing body")
	}
	if m.IsStatic() {
		return
	}

	overridden := class.Class.Overridden(m)
	if m.Modifiers.Has(types.Override) && len(overridden) == 0 {
		conflict("overrides nothing")
	}
	for _, o := range overridden {
		if o.Modifiers.Has(types.Final) {
			conflict("overrides final method " + o.Owner.Name + "." + o.Signature())
		}
	}
}

// checkUses walks code whose enclosing class and method ctx describes.
// inConstructor allows the final fields of that class to be assigned.
func (c *Checker) checkUses(ctx scope.Context, code ast.Node, inConstructor bool) {
	if code == nil {
		return
	}
	from := ctx.ThisClass()
	ast.Inspect(code, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FieldAccess:
			if f, ok := n.Member.(*types.Field); ok {
				c.checkVisible(n, from, f.Owner, f.Name, f.Modifiers)
			}
		case *ast.MethodCall:
			if n.Method != nil {
				c.checkVisible(n, from, n.Method.Owner, n.Method.Name, n.Method.Modifiers)
			}
		case *ast.ConstructorCall:
			if n.Constructor == nil {
				break
			}
			class := n.Constructor.Owner
			if class.IsAbstract() {
				c.report(diag.NewAbstractInstantiation{Range: n.Range, Class: class})
			}
			c.checkVisible(n, from, class, class.Name, n.Constructor.Modifiers|class.Modifiers&types.Deprecated)
		case *ast.Assignment:
			c.checkAssignable(n, from, inConstructor)
		}
		return true
	})
}

// checkVisible reports a use from the class from, nil in top-level code, of a
// member of owner that is not visible there
func (c *Checker) checkVisible(at ast.Positioner, from, owner *types.Class, name string, mods types.Modifiers) {
	if owner == nil {
		return
	}
	if mods.Has(types.Deprecated) && from != owner {
		c.report(diag.NewDeprecatedUse{Range: ast.RangeOf(at), Member: owner.Name + "." + name})
	}
	visible := true
	switch mods.Visibility() {
	case types.Private:
		// private top-level members are visible in their whole unit
		visible = from == owner || owner == c.unit.Header
	case types.Protected:
		visible = from != nil && from.IsSubclassOf(owner)
	case types.Internal:
		visible = owner.Package == c.unit.Package
	}
	if !visible {
		c.report(diag.NewNotVisible{Range: ast.RangeOf(at), Member: owner.Name + "." + name, Visibility: mods.Visibility()})
	}
}

func (c *Checker) checkAssignable(a *ast.Assignment, from *types.Class, inConstructor bool) {
	access, ok := a.Target.(*ast.FieldAccess)
	if !ok {
		return
	}
	switch m := access.Member.(type) {
	case *types.Variable:
		if m.Final {
			c.report(diag.NewFinalAssignment{Range: access.Range, Name: m.Name})
		}
	case *types.Field:
		if !m.Modifiers.Has(types.Final) {
			return
		}
		_, throughThis := access.Receiver.(*ast.This)
		initializing := inConstructor && !m.IsStatic() && m.Owner == from && (access.Receiver == nil || throughThis)
		if !initializing {
			c.report(diag.NewFinalAssignment{Range: access.Range, Name: m.Name})
		}
	}
}
