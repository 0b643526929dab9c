// Package main provides the CLI for leapbuild, a multi-pipeline bundler.
package main

import (
	"os"

	"github.com/leapstack-labs/leapbuild/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
