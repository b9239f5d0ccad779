// Package cmd provides the root command and subcommands for scopesmapctl.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scopesmapctl",
		Short: "Inspect and manipulate source map scopes data",
		Long: `scopesmapctl reads and writes the scopes extension of JSON source maps:
the side-channel that records an authored-source lexical scope tree, a
generated-code range tree, inlined call sites and per-variable binding
expressions alongside the ordinary "mappings" field.`,
	}
}

// Execute runs the root command. Called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
