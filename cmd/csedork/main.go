// Package main is the entry point for the csedork CLI.
package main

import (
	"os"

	"github.com/jmylchreest/csedork/cmd/csedork/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
