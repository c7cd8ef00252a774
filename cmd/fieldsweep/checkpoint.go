package main

import (
	"github.com/aretw0/fieldsweep/internal/cli"
	"github.com/spf13/cobra"
)

var checkpointCmd = &cobra.Command{
	Use:     "checkpoint",
	Aliases: []string{"cp"},
	Short:   "Manage stored sweep checkpoints",
}

var checkpointLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored checkpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		return cli.ListCheckpoints(cmd.Context(), app)
	},
}

var checkpointInspectCmd = &cobra.Command{
	Use:   "inspect [sweep-id]",
	Short: "Show a stored checkpoint",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		id := app.Config.SweepID
		if len(args) > 0 {
			id = args[0]
		}
		format, _ := cmd.Flags().GetString("format")
		return cli.InspectCheckpoint(cmd.Context(), app, id, format)
	},
}

var checkpointRmCmd = &cobra.Command{
	Use:   "rm <sweep-id>...",
	Short: "Remove one or more checkpoints and their autostart markers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		return cli.RemoveCheckpoints(cmd.Context(), app, args)
	},
}

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Store the sweep and start it without asking on the next run",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		off, _ := cmd.Flags().GetBool("off")
		return cli.Autostart(cmd.Context(), app, sweepOptions(cmd), off)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [sweep-id]",
	Short: "Show the recorded solver attempts of a sweep",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		return cli.History(cmd.Context(), app, id, limit, format)
	},
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointLsCmd)
	checkpointCmd.AddCommand(checkpointInspectCmd)
	checkpointCmd.AddCommand(checkpointRmCmd)
	checkpointInspectCmd.Flags().String("format", cli.FormatText, "Output format: text, json or mermaid")

	rootCmd.AddCommand(autostartCmd)
	addSweepFlags(autostartCmd)
	autostartCmd.Flags().Bool("off", false, "Clear the autostart marker instead")

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 0, "Show only the last N attempts (0 for all)")
	historyCmd.Flags().String("format", cli.FormatText, "Output format: text or json")
}
