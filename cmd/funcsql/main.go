// Package main provides the funcsql command.
package main

import (
	"os"

	"github.com/leapstack-labs/funcsql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
