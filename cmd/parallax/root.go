package main

import (
	"log/slog"

	"github.com/phanxgames/parallax"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parallax",
	Short: "Scroll-driven page animation runner",
	Long: `parallax loads a YAML page description (sections, elements, tweens,
timelines, staggers and scroll triggers) and validates it, simulates it
headlessly against a scroll script, or runs it in a window.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(runCmd)
}

// newLogger builds the logger selected by the persistent flags, writing to
// the command's error stream.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	return parallax.NewLogger(cmd.ErrOrStderr(), level, format)
}
