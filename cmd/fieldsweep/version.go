package main

import (
	"fmt"

	"github.com/aretw0/fieldsweep"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fieldsweep",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fieldsweep version %s\n", fieldsweep.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
