package main

import (
	"github.com/aretw0/weft/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive HTTP server",
	Long: `Keeps one engine alive and exposes it over HTTP: run graphs or single nodes on demand,
inspect the namespace, object store and timings, and follow narration over SSE (/events).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, debug := globalFlags(cmd)
		port, _ := cmd.Flags().GetInt("port")
		return cli.Serve(cli.ServeOptions{ConfigPath: configPath, Port: port, Debug: debug})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides server.port)")
}
