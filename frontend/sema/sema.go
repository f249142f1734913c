// Package sema holds the phases that turn a syntax-only unit into a fully
// typed one. Each phase is a method of Checker and must run, for the whole
// unit, after the previous one:
//
//	ResolveTypes   classes, members and signatures; bounds; supertypes
//	Resolve        names to members; rewrites of ambiguous forms
//	CheckTypes     expression types, overloads, conversions, lambdas, captures
//	Check          visibility, modifiers, deprecation
//	FoldConstants  constant sub-expressions to literals
//	Cleanup        lambdas to method references; frozen capture tables
//
// Every phase reports problems to the sink and degrades the offending node to
// Unknown or a nil member instead of stopping. Running a phase again over a
// unit it already ran on gives the same types and members.
package sema

import (
	"log/slog"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/cottand/kiln/internal/log"
)

type Checker struct {
	unit     *ast.Unit
	universe *universe.Universe
	builtins *universe.Builtins
	sink     *diag.Sink
	policy   match.TiePolicy
	logger   *slog.Logger

	header  *scope.Header
	classes map[*ast.ClassDecl]*scope.Class
}

type Config struct {
	TiePolicy match.TiePolicy
	// Logger defaults to the sema section of the default logger
	Logger *slog.Logger
}

func NewChecker(unit *ast.Unit, u *universe.Universe, sink *diag.Sink, config Config) *Checker {
	logger := config.Logger
	if logger == nil {
		logger = log.DefaultLogger
	}
	return &Checker{
		unit:     unit,
		universe: u,
		builtins: u.Builtins(),
		sink:     sink,
		policy:   config.TiePolicy,
		logger:   logger.With("section", "sema", "unit", unit.Name),
		classes:  map[*ast.ClassDecl]*scope.Class{},
	}
}

// Header is the top-level context of the unit, available once ResolveTypes ran
func (c *Checker) Header() *scope.Header { return c.header }

func (c *Checker) report(d diag.Diagnostic) {
	c.logger.Debug("reported diagnostic", "diagnostic", diag.Format(d))
	c.sink.Add(d)
}

func (c *Checker) classContext(decl *ast.ClassDecl) *scope.Class {
	if ctx, ok := c.classes[decl]; ok {
		return ctx
	}
	ctx := scope.NewClass(c.header, decl.Class)
	c.classes[decl] = ctx
	return ctx
}

func paramVariables(params []*ast.ParamDecl) []*types.Variable {
	vars := make([]*types.Variable, 0, len(params))
	for _, p := range params {
		if p.Variable != nil {
			vars = append(vars, p.Variable)
		}
	}
	return vars
}

// bodies visits the code of the unit: field initializers first, in
// declaration order, then method and constructor bodies, each with the
// context it runs in
type bodies struct {
	field       func(ctx scope.Context, decl *ast.FieldDecl)
	method      func(ctx scope.Context, decl *ast.MethodDecl)
	constructor func(ctx scope.Context, class *ast.ClassDecl, decl *ast.ConstructorDecl)
}

func (c *Checker) walkBodies(v bodies) {
	for _, f := range c.unit.Fields {
		if f.Init != nil && v.field != nil {
			v.field(c.header, f)
		}
	}
	for _, decl := range c.unit.Classes {
		ctx := c.classContext(decl)
		for _, f := range decl.Fields {
			if f.Init == nil || v.field == nil {
				continue
			}
			var fieldCtx scope.Context = ctx
			if f.Modifiers.Has(types.Static) {
				fieldCtx = scope.NewMethod(ctx, &types.Method{Name: f.Name, Modifiers: types.Static}, nil)
			}
			v.field(fieldCtx, f)
		}
	}
	for _, m := range c.unit.Functions {
		if m.Body != nil && m.Method != nil && v.method != nil {
			v.method(scope.NewMethod(c.header, m.Method, paramVariables(m.Params)), m)
		}
	}
	for _, decl := range c.unit.Classes {
		ctx := c.classContext(decl)
		for _, m := range decl.Methods {
			if m.Body != nil && m.Method != nil && v.method != nil {
				v.method(scope.NewMethod(ctx, m.Method, paramVariables(m.Params)), m)
			}
		}
		for _, ctor := range decl.Constructors {
			if ctor.Body != nil && v.constructor != nil {
				v.constructor(scope.NewConstructor(ctx, paramVariables(ctor.Params)), decl, ctor)
			}
		}
	}
}

// allClasses returns the header class followed by the classes of the unit
func (c *Checker) allClasses() []*types.Class {
	classes := []*types.Class{c.unit.Header}
	for _, decl := range c.unit.Classes {
		if decl.Class != nil {
			classes = append(classes, decl.Class)
		}
	}
	return classes
}
