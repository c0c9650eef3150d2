// Package main provides the avatar generation CLI: the weekly job trigger,
// interactive playlist generation, and job record inspection.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "avatargen",
	Short: "Weekly avatar and playlist generation orchestrator",
	Long:  "avatargen orchestrates generative-model providers to produce a weekly illustrated avatar image and on-demand structured playlists, persisting results per weekly period.",
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug-level logs")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cobra.OnInitialize(func() {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})))
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
