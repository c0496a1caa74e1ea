// Package commands implements the CLI commands for mxctl, the MX
// network protocol client.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/openmx/mxnet/cmd/mxctl/cmdutil"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mxctl",
	Short: "MX network protocol client",
	Long: `mxctl is a command-line client for the MX network protocol: the
record/field RPC and callback protocol spoken by MX device servers.

Every subcommand names a field with a "[host[@args]:]record.field"
identifier - the host and port (or Unix socket path), then the record
and field name separated by a dot. Omitting the host connects to
localhost.

Use "mxctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ConfigPath, _ = cmd.Flags().GetString("config")
		cmdutil.Flags.Timeout, _ = cmd.Flags().GetDuration("timeout")
		cmdutil.Flags.DataFormat, _ = cmd.Flags().GetString("format")
		cmdutil.Flags.Use64BitLongs, _ = cmd.Flags().GetBool("64bit-longs")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/mxctl/config.yaml)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "RPC timeout (overrides config)")
	rootCmd.PersistentFlags().String("format", "", "Data format: ascii, raw, xdr, negotiate (overrides config)")
	rootCmd.PersistentFlags().Bool("64bit-longs", false, "Negotiate 64-bit LONG/ULONG/HEX elements")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(handleCmd)
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(optionCmd)
	rootCmd.AddCommand(attributeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
