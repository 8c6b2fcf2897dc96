// Package commands implements the CLI commands of 5gctl, the operator
// client for the emulated 5G core.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/drcoopertbbt/BF3-5G-Demo/cmd/5gctl/cmdutil"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "5gctl",
	Short: "5G core control - operator client for the emulated network",
	Long: `5gctl is the command-line client for operating the emulated 5G
standalone core network.

Use this tool to inspect the running network functions, query the NRF,
drive UE registration and PDU session flows, and manage configuration
files.

Use "5gctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Sync flags to cmdutil.Flags for subcommands.
		cmdutil.Flags.NRFURL, _ = cmd.Flags().GetString("nrf-url")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.Timeout, _ = cmd.Flags().GetDuration("timeout")
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().String("nrf-url", "http://127.0.0.1:8000", "Base URL of the NRF")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Duration("timeout", defaultTimeout, "Request timeout")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(registerUECmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
