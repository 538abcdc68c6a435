package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yurixander/minimal"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of minimal",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "minimal version %s\n", strings.TrimSpace(minimal.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
