package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "weft runs dataflow graphs of Lua nodes",
	Long: `weft executes node graphs: each node holds a Lua fragment and an entry function,
execution pins order the calls and data pins carry values between them.
Definitions persist in a shared namespace across nodes and runs.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "weft.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Write diagnostics to stderr")
}

func globalFlags(cmd *cobra.Command) (configPath string, debug bool) {
	configPath, _ = cmd.Flags().GetString("config")
	debug, _ = cmd.Flags().GetBool("debug")
	return configPath, debug
}
