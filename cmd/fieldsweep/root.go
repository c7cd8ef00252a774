package main

import (
	"fmt"
	"os"

	"github.com/aretw0/fieldsweep/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fieldsweep",
	Short: "fieldsweep runs resumable electric-field sweeps through SIESTA",
	Long: `fieldsweep walks a list of applied electric fields, running the solver once per
field in its own directory and seeding each run with the relaxed geometry of the
previous one. Progress is checkpointed after every point.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Working directory of the sweep")
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default: <dir>/fieldsweep.yaml)")
	rootCmd.PersistentFlags().String("sweep", "", "Sweep definition file (default: <dir>/sweep.hcl)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

// setup loads the application from the persistent flags.
func setup(cmd *cobra.Command) (*cli.App, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	configPath, _ := flags.GetString("config")
	sweepPath, _ := flags.GetString("sweep")
	debug, _ := flags.GetBool("debug")
	format, _ := flags.GetString("log-format")

	return cli.Setup(cli.Globals{
		Dir:        dir,
		ConfigPath: configPath,
		SweepPath:  sweepPath,
		Debug:      debug,
		LogFormat:  format,
		Stdin:      cmd.InOrStdin(),
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	})
}

// addSweepFlags registers the flags that define or override a sweep.
func addSweepFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("x", "", "X axis as start:end:step, or a fixed value")
	f.String("y", "", "Y axis as start:end:step, or a fixed value")
	f.String("z", "", "Z axis as start:end:step, or a fixed value")
	f.StringArray("point", nil, "Explicit field vector x,y,z (repeatable)")
	f.String("input", "", "Base .fdf input (overrides config)")
	f.StringSlice("aux", nil, "Files copied into every point directory (overrides config)")
	f.String("script", "", "Solver invocation script (overrides config)")
}

func sweepOptions(cmd *cobra.Command) cli.SweepOptions {
	f := cmd.Flags()
	var o cli.SweepOptions
	o.Input, _ = f.GetString("input")
	o.Aux, _ = f.GetStringSlice("aux")
	o.Script, _ = f.GetString("script")
	o.Sweep.X, _ = f.GetString("x")
	o.Sweep.Y, _ = f.GetString("y")
	o.Sweep.Z, _ = f.GetString("z")
	o.Sweep.Points, _ = f.GetStringArray("point")
	return o
}
