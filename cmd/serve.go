package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pierregondois/lisa/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lisa daemon",
	Long: `Starts the control plane and serves it until terminated.

Depending on configuration this runs:
  - the host directory bridge, mirroring the virtual tree into a real
    directory so plain file operations drive the control plane
  - the MCP stdio server, exposing the same operations as tools

Active configurations are torn down on shutdown.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(app.Options{
		ConfigPath: rootConfigPath,
		LogLevel:   rootLogLevel,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(cmd.Context(), rootCmd.Version)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
