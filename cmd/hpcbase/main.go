// Package main is the entry point for the hpcbase CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/opmodel/hpcbase/internal/cmd"
	"github.com/opmodel/hpcbase/internal/output"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if !errors.As(err, &exitErr) || !exitErr.Printed {
			fmt.Fprintln(os.Stderr, err)
		}
		code := cmd.ExitCodeFromError(err)
		output.Debug("exiting", "code", code, "reason", cmd.ExitCodeName(code))
		os.Exit(code)
	}
}
