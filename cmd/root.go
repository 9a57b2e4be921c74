// Package cmd contains the CLI commands for the rorv application.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

// verbose holds the global --verbose flag state.
var verbose bool

func init() {
	rootCmd = BuildCommandTree(newValidateAdapter())
}

// GetVerbose returns the current verbose flag state.
func GetVerbose() bool {
	return verbose
}

// NewRootCmd creates a new root command instance without subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rorv",
		Short: "Validate organization registry curation batches",
		Long: "rorv checks registry record batches (CSV or JSON) for malformed values, " +
			"unapplied edits and likely duplicate organizations, writing one CSV report per check.",
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")

	return cmd
}

// BuildCommandTree returns the root command with every subcommand
// registered. The runner performs validation runs.
func BuildCommandTree(runner ValidateRunner) *cobra.Command {
	root := NewRootCmd()
	root.AddCommand(
		NewValidateCmd(runner),
		NewListCmd(),
		NewParseCmd(),
	)
	return root
}

// Main runs the CLI with the process arguments and returns the exit code.
func Main(ctx context.Context, args []string) int {
	return RunCLI(ctx, rootCmd, args, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
}
