package main

import (
	"fmt"
	"os"

	"github.com/aretw0/weft/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [graph...]",
	Short: "Check graphs for consistency",
	Long:  `Checks pins, connections, reroutes and entry points of the named graphs, or of every graph in the configured directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := globalFlags(cmd)
		if err := cli.Validate(configPath, args, os.Stdout); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("Graphs are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
