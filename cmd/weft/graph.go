package main

import (
	"os"

	"github.com/aretw0/weft/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <graph>",
	Short: "Export the graph visualization",
	Long:  `Outputs a Mermaid diagram (graph LR) of the graph: execution flow as solid arrows, data as dotted arrows.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := globalFlags(cmd)
		return cli.Graph(configPath, args[0], os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
