package cmd

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pierregondois/lisa/internal/api"
	"github.com/pierregondois/lisa/internal/app"
)

var featuresShowHidden bool

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the available features and their parameters",
	RunE:  runFeatures,
}

func runFeatures(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(app.Options{
		ConfigPath: rootConfigPath,
		LogLevel:   rootLogLevel,
		Quiet:      true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	catalog := api.GetFeatureCatalog()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"FEATURE", "PARAMETER", "KIND", "ACCESS"})

	for _, f := range catalog.ListFeatures() {
		if f.Hidden && !featuresShowHidden {
			continue
		}
		name := f.Name
		if f.Hidden {
			name += " (hidden)"
		}
		if len(f.Params) == 0 {
			t.AppendRow(table.Row{name, "", "", ""})
			continue
		}
		for i, p := range f.Params {
			cell := ""
			if i == 0 {
				cell = name
			}
			access := "ro"
			if p.Writable {
				access = "rw"
			}
			t.AppendRow(table.Row{cell, p.Name, strings.ToLower(p.Kind), access})
		}
	}
	t.Render()
	return nil
}

func init() {
	featuresCmd.Flags().BoolVar(&featuresShowHidden, "all", false,
		"include hidden features")
	rootCmd.AddCommand(featuresCmd)
}
