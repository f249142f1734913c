// Package failure raises internal invariant violations of the compiler.
package failure

import (
	"fmt"

	"github.com/pkg/errors"
)

// Failure is an internal invariant violation: it indicates a compiler bug
// rather than a problem in the compiled unit, so it is raised with panic and
// never recorded as a diagnostic. The pipeline turns it into an error.
type Failure struct {
	err error
}

// Fail panics with a Failure carrying a stack trace
func Fail(format string, args ...any) {
	panic(&Failure{err: errors.Errorf(format, args...)})
}

func (f *Failure) Error() string { return "internal compiler failure: " + f.err.Error() }
func (f *Failure) Unwrap() error { return f.err }

// Format prints the stack trace of the failure with %+v
func (f *Failure) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		_, _ = fmt.Fprintf(s, "internal compiler failure: %+v", f.err)
		return
	}
	_, _ = fmt.Fprint(s, f.Error())
}
