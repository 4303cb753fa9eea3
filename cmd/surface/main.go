// Package main provides the entry point for the surface CLI.
package main

import (
	"os"

	"github.com/SurfaceLayerAI/surface-plugin/cmd/surface/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
