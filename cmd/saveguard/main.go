// Package main is the entry point for the saveguard CLI.
package main

import (
	"os"

	"github.com/khendrix/saveguard/cmd/saveguard/commands"
	"github.com/khendrix/saveguard/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		var exitErr *errors.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
