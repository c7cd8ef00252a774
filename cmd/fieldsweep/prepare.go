package main

import (
	"github.com/aretw0/fieldsweep/internal/cli"
	"github.com/spf13/cobra"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Create every point directory without running the solver",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		return cli.Prepare(app, sweepOptions(cmd))
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "List the points of the sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return cli.Preview(app, sweepOptions(cmd).Sweep, format)
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	addSweepFlags(prepareCmd)

	rootCmd.AddCommand(previewCmd)
	addSweepFlags(previewCmd)
	previewCmd.Flags().String("format", cli.FormatText, "Output format: text, json or mermaid")
}
