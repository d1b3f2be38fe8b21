package main

import (
	"os"

	"github.com/aretw0/weft/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <graph>",
	Short: "Run a graph once",
	Long: `Loads the graph document (YAML or JSON, extension optional) from the configured
graphs directory, walks it from its entry points and prints the narration and a summary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, debug := globalFlags(cmd)
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")
		watchMode, _ := cmd.Flags().GetBool("watch")
		mermaid, _ := cmd.Flags().GetBool("mermaid")
		perf, _ := cmd.Flags().GetBool("perf")

		return cli.Execute(cli.RunOptions{
			ConfigPath: configPath,
			Graph:      args[0],
			Headless:   headless,
			JSON:       jsonMode,
			Debug:      debug,
			Watch:      watchMode,
			Mermaid:    mermaid,
			Perf:       perf,
			Out:        os.Stdout,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Print nothing; the exit status reports the outcome")
	runCmd.Flags().Bool("json", false, "Print the run report as JSON instead of narration")
	runCmd.Flags().BoolP("watch", "w", false, "Run again whenever the graph document changes")
	runCmd.Flags().Bool("mermaid", false, "Append a Mermaid diagram of the run")
	runCmd.Flags().Bool("perf", false, "Append per-node timing statistics")
}
