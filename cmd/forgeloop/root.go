package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// CheckAgentCLI verifies that the configured agent CLI is available in
// PATH. Returns an error with installation instructions if not found.
func CheckAgentCLI(command string) error {
	_, err := exec.LookPath(command)
	if err != nil {
		return fmt.Errorf("%s CLI not found in PATH\n\n"+
			"forgeloop drives an external coding agent as a subprocess by default.\n\n"+
			"Install it, or set runner.use_direct_api: true in .forgeloop.yaml to\n"+
			"drive the Anthropic API directly instead", command)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "forgeloop",
	Short: "Autonomous feature-implementation loop",
	Long: `forgeloop drives a persistent store of features through a
single-process outer loop: batch pending work by category, hand a batch
to a coding agent, observe its tool calls, and reconcile claimed
completions against the store's verified state.

Subcommands:
  run       drive the outer loop against a project's store
  status    print a read-only kanban summary
  ingest    load a feature list into the store
  validate  check the Category Contiguity Invariant without running
  gc        purge old session rows
  dashboard launch the read-only TUI`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(gcCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(versionCmd)
}
