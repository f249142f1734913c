// Package frontend runs the phases of the compiler over a unit and hands the
// typed tree to a code generator.
package frontend

import (
	"log/slog"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/scope"
	"github.com/cottand/kiln/frontend/sema"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/cottand/kiln/internal/log"
	"github.com/pkg/errors"
)

type Phase uint8

const (
	PhaseResolveTypes Phase = iota + 1
	PhaseResolve
	PhaseCheckTypes
	PhaseCheck
	PhaseFoldConstants
	PhaseCleanup
	PhaseEmit
)

var phaseNames = map[Phase]string{
	PhaseResolveTypes:  "resolveTypes",
	PhaseResolve:       "resolve",
	PhaseCheckTypes:    "checkTypes",
	PhaseCheck:         "check",
	PhaseFoldConstants: "foldConstants",
	PhaseCleanup:       "cleanup",
	PhaseEmit:          "emit",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "none"
}

// CodeGenerator turns a fully typed unit into its compiled form
type CodeGenerator interface {
	Generate(unit *ast.Unit) ([]byte, error)
}

type Options struct {
	TiePolicy match.TiePolicy
	// Generator runs in the emit phase. Without one, emit does nothing.
	Generator CodeGenerator
	// StopAfter ends the pipeline after that phase; zero runs every phase
	StopAfter Phase
	Logger    *slog.Logger
}

type Result struct {
	Unit        *ast.Unit
	Diagnostics *diag.Sink
	// Header is the top-level context of the unit
	Header *scope.Header
	// Reached is the last phase that ran
	Reached Phase
	// Output is what the generator produced, nil when emit was skipped
	Output []byte
}

// Emitted reports whether the unit was handed to the code generator
func (r *Result) Emitted() bool { return r.Reached == PhaseEmit && r.Output != nil }

// Compile runs every phase over the whole unit, one phase at a time, against
// a universe that is only read. Problems in the unit are diagnostics of the
// result; emit is skipped when any of them is an error. The returned error is
// reserved for internal failures of the compiler and of the generator.
func Compile(unit *ast.Unit, u *universe.Universe, opts Options) (res *Result, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger
	}
	logger = logger.With("section", "pipeline", "unit", unit.Name)

	sink := diag.NewSink()
	checker := sema.NewChecker(unit, u, sink, sema.Config{TiePolicy: opts.TiePolicy, Logger: opts.Logger})
	res = &Result{Unit: unit, Diagnostics: sink}

	current := Phase(0)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		failure, ok := r.(*diag.Failure)
		if !ok {
			panic(r)
		}
		logger.Error("internal failure", "phase", current, "error", failure)
		res, err = nil, errors.Wrapf(failure, "compiling unit %s during %s", unit.Name, current)
	}()

	phases := []struct {
		phase Phase
		run   func()
	}{
		{PhaseResolveTypes, checker.ResolveTypes},
		{PhaseResolve, checker.Resolve},
		{PhaseCheckTypes, checker.CheckTypes},
		{PhaseCheck, checker.Check},
		{PhaseFoldConstants, checker.FoldConstants},
		{PhaseCleanup, checker.Cleanup},
	}
	for _, p := range phases {
		current = p.phase
		p.run()
		res.Reached = p.phase
		logger.Debug("phase done", "phase", p.phase, "diagnostics", sink.Len())
		if p.phase == opts.StopAfter {
			res.Header = checker.Header()
			return res, nil
		}
	}
	res.Header = checker.Header()

	current = PhaseEmit
	if sink.HasError() {
		logger.Info("skipping emit", "errors", sink.ErrorCount())
		return res, nil
	}
	res.Reached = PhaseEmit
	if opts.Generator == nil {
		return res, nil
	}
	out, err := opts.Generator.Generate(unit)
	if err != nil {
		return nil, errors.Wrapf(err, "generating code for unit %s", unit.Name)
	}
	res.Output = out
	return res, nil
}
