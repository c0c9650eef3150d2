package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sjfortin/avatar-generator/internal/avatar"
	"github.com/sjfortin/avatar-generator/internal/config"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the weekly avatar generation job for the current period",
	Long: `Triggers one generation cycle: headline acquisition -> mood prompt synthesis -> image synthesis -> asset upload.

Re-running within the same week is an idempotent no-op once the period has succeeded, unless --force is set.`,
	RunE: runJobCmd,
}

var runForce bool

func init() {
	runCommand.Flags().BoolVar(&runForce, "force", false, "Re-run even when this period already succeeded")
	rootCmd.AddCommand(runCommand)
}

func runJobCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	service, jobs, client, err := buildAvatarService(ctx, cfg)
	if err != nil {
		return err
	}
	defer jobs.Close()
	defer func() { _ = client.Close() }()

	job, err := service.RunForCurrentPeriod(ctx, runForce)
	if err != nil {
		if errors.Is(err, avatar.ErrPaused) {
			fmt.Println("Generation is paused; run `avatargen resume` to re-enable it.")
			return nil
		}
		return err
	}

	printJob(os.Stdout, job)
	return nil
}
