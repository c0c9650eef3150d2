package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sjfortin/avatar-generator/internal/config"
	"github.com/sjfortin/avatar-generator/internal/playlist"
)

var playlistCommand = &cobra.Command{
	Use:   "playlist",
	Short: "Generate a structured playlist interactively",
	Long: `Generates a playlist through the provider cascade and prints the validated JSON.

Pass --prior with a previously generated playlist JSON file to revise it instead of generating from scratch.`,
	RunE: runPlaylistCmd,
}

var (
	playlistPrompt   string
	playlistDuration int
	playlistGenre    string
	playlistEra      string
	playlistPrior    string
)

func init() {
	playlistCommand.Flags().StringVarP(&playlistPrompt, "prompt", "p", "", "What the playlist should be (required)")
	playlistCommand.Flags().IntVarP(&playlistDuration, "duration", "d", 0, "Target duration in minutes")
	playlistCommand.Flags().StringVar(&playlistGenre, "genre", "", "Genre filter")
	playlistCommand.Flags().StringVar(&playlistEra, "era", "", "Era filter (e.g. \"90s\")")
	playlistCommand.Flags().StringVar(&playlistPrior, "prior", "", "Path to a prior playlist JSON to modify")
	_ = playlistCommand.MarkFlagRequired("prompt")
	rootCmd.AddCommand(playlistCommand)
}

func runPlaylistCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.FromEnv()
	if err := cfg.ValidatePlaylistOnly(); err != nil {
		return err
	}

	client, invoker, primary, err := buildCascade(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	req := playlist.Request{
		Prompt:          playlistPrompt,
		DurationMinutes: playlistDuration,
		Genre:           playlistGenre,
		Era:             playlistEra,
	}

	if playlistPrior != "" {
		data, err := os.ReadFile(playlistPrior)
		if err != nil {
			return fmt.Errorf("failed to read prior playlist: %w", err)
		}
		var prior playlist.Data
		if err := json.Unmarshal(data, &prior); err != nil {
			return fmt.Errorf("failed to parse prior playlist: %w", err)
		}
		req.Prior = &prior
	}

	result, err := playlist.NewService(invoker, primary).Generate(ctx, req)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode playlist: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}
