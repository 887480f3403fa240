// Package main is the entry point for the auviostream daemon.
package main

import (
	"os"

	"github.com/auviostream/auviostream/cmd/auviostream/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
