// Command xpcrash applies a loop-capture freeze effect to audio.
//
// Usage:
//
//	xpcrash render [input...] [flags]
//	xpcrash live [flags]
//	xpcrash analyze <input> [flags]
//
// Run "xpcrash help <command>" for details.
package main

import (
	"os"

	"github.com/cwbudde/xpcrash/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
