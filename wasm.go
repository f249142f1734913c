//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cottand/kiln/kiln"
)

func main() {
	js.Global().Set("CheckAndShowDiagnostics", js.FuncOf(kiln.CheckAndShowDiagnostics))
	js.Global().Set("CompileAndShowProgram", js.FuncOf(kiln.CompileAndShowProgram))

	// wait indefinitely so that Go does not terminate execution
	// and the function remains available
	<-make(chan struct{})
}
