package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/webrig/cmd/webrig"
)

// Writes webrig.1 to stdout, or one page per command into the directory
// given as the first argument.
func main() {
	rootCmd := webrig.NewRootCmd()

	var err error
	if len(os.Args) > 1 {
		err = doc.GenManTree(rootCmd, webrig.ManHeader(), os.Args[1])
	} else {
		err = doc.GenMan(rootCmd, webrig.ManHeader(), os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
