// Package main provides the coursedb CLI: operator tooling for the
// per-course database registry, lifecycle, and routing layer.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
