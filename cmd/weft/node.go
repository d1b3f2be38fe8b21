package main

import (
	"os"

	"github.com/aretw0/weft/internal/cli"
	"github.com/spf13/cobra"
)

var nodeCmd = &cobra.Command{
	Use:   "node <function>",
	Short: "Call a single node function",
	Long:  `Evaluates a Lua fragment (from --code or --file) and calls the named entry function once.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, debug := globalFlags(cmd)
		code, _ := cmd.Flags().GetString("code")
		file, _ := cmd.Flags().GetString("file")
		title, _ := cmd.Flags().GetString("title")
		nodeArgs, _ := cmd.Flags().GetString("args")
		jsonMode, _ := cmd.Flags().GetBool("json")

		return cli.ExecuteNode(cli.NodeOptions{
			ConfigPath: configPath,
			Title:      title,
			Code:       code,
			File:       file,
			Function:   args[0],
			Args:       nodeArgs,
			JSON:       jsonMode,
			Debug:      debug,
			Out:        os.Stdout,
		})
	},
}

func init() {
	rootCmd.AddCommand(nodeCmd)

	nodeCmd.Flags().String("code", "", "Lua fragment evaluated before the call")
	nodeCmd.Flags().StringP("file", "f", "", "Read the fragment from a file")
	nodeCmd.Flags().String("title", "", "Node title (defaults to the function name)")
	nodeCmd.Flags().String("args", "", "Named arguments as a JSON object")
	nodeCmd.Flags().Bool("json", false, "Print the result as JSON")
	nodeCmd.MarkFlagsMutuallyExclusive("code", "file")
}
