// Package main provides the entry point for the irengine CLI.
package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/cmd/irengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
