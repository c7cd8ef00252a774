package main

import (
	"github.com/aretw0/fieldsweep/internal/cli"
	"github.com/aretw0/fieldsweep/pkg/solver"
	"github.com/spf13/cobra"
)

var solveCmd = &cobra.Command{
	Use:   "solve [dir]",
	Short: "Run the solver once in a point directory",
	Long: `Feeds the newest .fdf in dir to the solver binary, writes its log next to it and
leaves the completion marker when the log shows a finished run. A density
matrix from an earlier attempt enables the restart flag.

This is the default solver command of 'fieldsweep run'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		var opts cli.SolveOptions
		opts.Binary, _ = cmd.Flags().GetString("binary")
		opts.RestartFlag, _ = cmd.Flags().GetString("restart-flag")
		opts.Args, _ = cmd.Flags().GetStringArray("arg")
		return cli.Solve(cmd.Context(), app, dir, opts)
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().String("binary", "siesta", "Solver binary")
	solveCmd.Flags().String("restart-flag", solver.DefaultRestartFlag, "Flag added when a restart is possible (empty disables)")
	solveCmd.Flags().StringArray("arg", nil, "Extra argument for the binary (repeatable)")
}
