// Package main is the entry point for the drawrpc CLI.
package main

import (
	"os"

	"github.com/drawrpc/drawrpc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
