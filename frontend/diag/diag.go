// Package diag holds the diagnostics a compilation reports to the user, and
// the Failure type for internal invariant violations which are not diagnostics.
package diag

import (
	"fmt"
	"log/slog"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/internal/failure"
)

type Severity uint8

const (
	Warning Severity = iota + 1
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "invalid"
	}
}

// Diagnostic is a single problem found in a unit
type Diagnostic interface {
	error
	ast.Positioner
	Code() Code
	Severity() Severity
	// Info are additional lines explaining the context of the problem
	Info() []string
}

// Format renders d as `error[resolve.method.not_found]: message`
func Format(d Diagnostic) string {
	return fmt.Sprintf("%s[%s]: %s", d.Severity(), d.Code(), d.Error())
}

// Sink is the append-only, ordered collection of diagnostics of one unit.
// The zero value is ready to use.
type Sink struct {
	diags  []Diagnostic
	errors int
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Add(diags ...Diagnostic) {
	for _, d := range diags {
		if d.Severity() == Error {
			s.errors++
		}
		s.diags = append(s.diags, d)
	}
}

// All returns the recorded diagnostics in the order they were added
func (s *Sink) All() []Diagnostic {
	if s == nil {
		return nil
	}
	return s.diags
}

func (s *Sink) Len() int {
	if s == nil {
		return 0
	}
	return len(s.diags)
}

func (s *Sink) HasError() bool {
	return s != nil && s.errors > 0
}

func (s *Sink) ErrorCount() int {
	if s == nil {
		return 0
	}
	return s.errors
}

// WithCode returns the recorded diagnostics with the given code
func (s *Sink) WithCode(code Code) []Diagnostic {
	var found []Diagnostic
	for _, d := range s.All() {
		if d.Code() == code {
			found = append(found, d)
		}
	}
	return found
}

func (s *Sink) LogValue() slog.Value {
	var vals []slog.Attr
	for i, d := range s.All() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("d", i),
			Value: slog.GroupValue(
				slog.String("msg", Format(d)),
				slog.String("at", ast.RangeOf(d).String()),
			),
		})
	}
	return slog.GroupValue(vals...)
}

// Failure is an internal invariant violation. It is raised with panic and
// never recorded in a Sink.
type Failure = failure.Failure

// Fail panics with a Failure carrying a stack trace
func Fail(format string, args ...any) { failure.Fail(format, args...) }
