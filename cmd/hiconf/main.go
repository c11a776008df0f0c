// FILE: lixenwraith/hiconf/cmd/hiconf/main.go
package main

import (
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/lixenwraith/hiconf"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates malformed command lines from other resolution failures
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, hiconf.ErrCLIParse):
		return 2
	default:
		return 1
	}
}
