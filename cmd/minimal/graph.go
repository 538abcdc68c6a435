package main

import (
	"github.com/spf13/cobra"

	"github.com/yurixander/minimal/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the state propagation wiring as a Mermaid diagram",
	Long: `Initializes every feature and prints which state fields raise which
events, and which features listen on them. Paste the output into any
Mermaid renderer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Graph(cmd.Context(), runOptions(cmd))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
