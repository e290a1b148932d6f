// Package main provides the leapviz CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapviz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
