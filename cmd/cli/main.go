// Package main is the entry point for the feecalc CLI.
package main

import (
	"os"

	"feecalc/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
