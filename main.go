// Command codecopy copies project files to the clipboard as formatted snippets
// and keeps named lists of files for later copies.
package main

import (
	"fmt"
	"os"

	"github.com/lian/codecopy/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
