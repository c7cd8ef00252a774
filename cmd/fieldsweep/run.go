package main

import (
	"github.com/aretw0/fieldsweep"
	"github.com/aretw0/fieldsweep/internal/cli"
	"github.com/aretw0/fieldsweep/internal/presentation/tui"
	"github.com/aretw0/fieldsweep/pkg/adapters/inputs"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run or resume the sweep",
	Long: `Resumes the stored sweep (asking first unless autostart is set) or starts the
sweep described by the configuration, sweep file and flags.

The first interrupt stops after the running point; a second one aborts it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		opts := cli.RunOptions{SweepOptions: sweepOptions(cmd)}
		opts.HTTPAddr, _ = cmd.Flags().GetString("http")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")

		if inputs.StdinIsTerminal() {
			tui.PrintBanner(cmd.OutOrStdout(), fieldsweep.Version)
		}
		_, err = cli.RunSweep(cmd.Context(), app, opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSweepFlags(runCmd)
	runCmd.Flags().String("http", "", "Serve status and control on this address (e.g. :8080)")
	runCmd.Flags().Bool("fresh", false, "Discard any stored checkpoint and start over")
}
