package main

import (
	"os"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/cli"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/logging"
)

func main() {
	// Structured logging (JSON to stdout) until the database handler is attached
	logging.Setup()

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
