package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pierregondois/lisa/internal/app"
	"github.com/pierregondois/lisa/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive session on the configuration tree",
	Long: `Starts an in-process control plane and a small REPL over it, with
filesystem-flavored commands: ls, cat, write, mkdir, activate and friends.
Type help inside the session for the full list.`,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(app.Options{
		ConfigPath: rootConfigPath,
		LogLevel:   rootLogLevel,
		Quiet:      true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	return shell.New(a.FS).Run()
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
