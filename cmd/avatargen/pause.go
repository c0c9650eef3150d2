package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sjfortin/avatar-generator/internal/avatar"
)

var pauseCommand = &cobra.Command{
	Use:   "pause",
	Short: "Engage the generation kill switch",
	Long:  "Sets the persistent pause flag. Every future weekly trigger aborts without creating or mutating records until `avatargen resume` clears it.",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withJobService(func(ctx context.Context, service *avatar.Service) error {
			if err := service.SetPaused(ctx, true); err != nil {
				return err
			}
			fmt.Println("Generation paused.")
			return nil
		})
	},
}

var resumeCommand = &cobra.Command{
	Use:   "resume",
	Short: "Clear the generation kill switch",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withJobService(func(ctx context.Context, service *avatar.Service) error {
			if err := service.SetPaused(ctx, false); err != nil {
				return err
			}
			fmt.Println("Generation resumed.")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(pauseCommand)
	rootCmd.AddCommand(resumeCommand)
}
