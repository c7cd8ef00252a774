package main

import (
	"github.com/aretw0/fieldsweep"
	"github.com/aretw0/fieldsweep/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose stored checkpoints to MCP clients",
	Long:  `Serves read-only tools over stdio, or over SSE when --sse-port is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetInt("sse-port")
		return cli.ServeMCP(cmd.Context(), app, fieldsweep.Version, port)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Int("sse-port", 0, "Serve over SSE on this port instead of stdio")
}
