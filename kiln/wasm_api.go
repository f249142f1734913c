//go:build js && wasm

package kiln

import (
	"fmt"
	"strings"
	"syscall/js"

	"github.com/cottand/kiln/backend"
)

func errorsOf(pkg *Package) string {
	sb := strings.Builder{}
	sb.WriteString("the program has the following errors:\n")
	for _, d := range pkg.Diagnostics() {
		sb.WriteString(d)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// CheckAndShowDiagnostics compiles the unit in its first argument and lists
// its diagnostics, or the signatures of its top-level functions when there
// are none
func CheckAndShowDiagnostics(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "compiler panicked: " + fmt.Sprint(r)
		}
	}()

	pkg, err := NewPackageFromBytes([]byte(args[0].String()), "program.yaml")
	if err != nil {
		return fmt.Sprintf("the compiler encountered a failure:\n\n%s", err)
	}
	if len(pkg.Diagnostics()) > 0 {
		return errorsOf(pkg)
	}
	sb := strings.Builder{}
	for _, u := range pkg.Units() {
		for _, m := range u.Syntax.Header.Methods {
			sb.WriteString(m.Signature())
			sb.WriteString(": ")
			sb.WriteString(m.ReturnType().TypeName())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// CompileAndShowProgram compiles the unit in its first argument and returns
// the disassembled program.
//
// output: { error: string } | { program: string }
func CompileAndShowProgram(_ js.Value, args []js.Value) (ret any) {
	errorObj := func(err string) any {
		return js.ValueOf(map[string]any{"error": err})
	}
	defer func() {
		if r := recover(); r != nil {
			ret = errorObj("compiler panicked: " + fmt.Sprint(r))
		}
	}()

	pkg, err := NewPackageFromBytes([]byte(args[0].String()), "program.yaml")
	if err != nil {
		return errorObj(fmt.Sprintf("the compiler encountered a failure:\n\n%s", err))
	}
	if pkg.HasError() {
		return errorObj(errorsOf(pkg))
	}
	sb := strings.Builder{}
	for _, u := range pkg.Units() {
		program, err := backend.NewGenerator().Lower(u.Syntax)
		if err != nil {
			return errorObj(fmt.Sprintf("the compiler encountered a failure:\n%s", err))
		}
		sb.WriteString(program.String())
	}
	return js.ValueOf(map[string]any{"program": sb.String()})
}
