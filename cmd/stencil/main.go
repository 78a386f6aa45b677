// Command stencil runs the parallel stencil image editor.
//
// Usage:
//
//	stencil run [script]            execute commands from a file or stdin
//	stencil bench <image> [flags]   time a kernel sequence on one image
//	stencil version                 print the version
//
// Global flags select the execution strategy and logging:
//
//	--strategy shared|serial|distributed
//	--workers N  --units N  --max-pixels N
//	--log-level debug|info|warn|error  --log-format console|json
package main

import (
	"os"
)

func main() {
	if err := execute(newRootCmd(os.Stdin, os.Stdout, os.Stderr), os.Stderr); err != nil {
		os.Exit(1)
	}
}
