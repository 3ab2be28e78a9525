package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes are deterministic so the binary can gate CI pipelines.
const (
	ExitApproved     = 0
	ExitNotApproved  = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "gauntlet",
	Short: "Design document review gauntlet",
	Long:  "Gauntlet runs a design document through an ordered set of LLM reviewer personas, short-circuits on the first FAIL, and records approved documents for later browsing.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitApproved

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print gauntlet version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "gauntlet version %s\n", version)
	},
}
