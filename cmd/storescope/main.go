// Package main is the entrypoint for the storescope CLI.
package main

import (
	"fmt"
	"os"

	"github.com/storescope/storescope/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
