package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootConfigPath overrides the config file location for every subcommand.
var rootConfigPath string

// rootLogLevel overrides the configured log level for every subcommand.
var rootLogLevel string

// rootCmd is the entry point when lisa is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "lisa",
	Short: "Control plane for kernel inspection features",
	Long: `lisa manages named feature configurations through a virtual
configuration filesystem: directories are configurations, file writes select
features and tune their parameters, and an activate file applies them.

Run 'lisa serve' for the daemon (host directory bridge and MCP server) or
'lisa shell' for an interactive session.`,
	SilenceUsage: true,
}

// SetVersion injects the build version, typically from main via ldflags.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "lisa version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "",
		"config file (default is $HOME/.config/lisa/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "",
		"log level override: debug, info, warn or error")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
