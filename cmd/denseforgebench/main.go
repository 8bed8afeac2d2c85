// Command denseforgebench is a small CLI shell around the engine package,
// exercising it end-to-end the way a real caller would: build a graph,
// compile it against an engine, execute it, and inspect the result or its
// trace. Modeled on the teacher's cmd.NewCLI root-command construction
// (cmd/cmd.go).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
