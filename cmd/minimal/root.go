package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yurixander/minimal/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "minimal",
	Short: "minimal is a small interactive shell",
	Long: `minimal is an interactive shell with a handful of built-in commands,
a git-aware prompt and an optional Gemini chat, configured from
a YAML file, MINIMAL_* environment variables and flags.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		opts.NoSplash, _ = cmd.Flags().GetBool("no-splash")
		opts.Signals = true
		return cli.RunShell(cmd.Context(), opts)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	sigCtx := cli.NewSignalContext(context.Background(), syscall.SIGTERM)
	defer sigCtx.Cancel()

	if err := rootCmd.ExecuteContext(sigCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runOptions(cmd *cobra.Command) cli.RunOptions {
	configPath, _ := cmd.Flags().GetString("config")
	logFile, _ := cmd.Flags().GetString("log-file")
	return cli.RunOptions{
		ConfigPath: configPath,
		Flags:      cmd.Flags(),
		LogFile:    logFile,
		Stdin:      cmd.InOrStdin(),
		Stdout:     cmd.OutOrStdout(),
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default is the user config dir)")
	rootCmd.PersistentFlags().Bool("debug", false, "Shortcut for --log-level debug")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warning, info, verbose or debug")
	rootCmd.PersistentFlags().String("log-file", "", "Write diagnostics to this file instead of the terminal")

	rootCmd.Flags().Bool("no-splash", false, "Skip the splash screen at startup")
}
