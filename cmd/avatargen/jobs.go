package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sjfortin/avatar-generator/internal/avatar"
	"github.com/sjfortin/avatar-generator/internal/config"
	"github.com/sjfortin/avatar-generator/internal/store"
)

var jobsCommand = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect persisted generation job records",
}

var jobsCurrentCommand = &cobra.Command{
	Use:   "current",
	Short: "Show the current period's job, or the most recent successful one",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withJobService(func(ctx context.Context, service *avatar.Service) error {
			job, err := service.CurrentOrMostRecentSuccessful(ctx)
			if err != nil {
				return err
			}
			if job == nil {
				fmt.Println("No generation jobs recorded yet.")
				return nil
			}
			printJob(os.Stdout, job)
			return nil
		})
	},
}

var jobsListCommand = &cobra.Command{
	Use:   "list",
	Short: "List all successful generation jobs, newest first",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withJobService(func(ctx context.Context, service *avatar.Service) error {
			jobs, err := service.ListSuccessful(ctx)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Println("No successful generation jobs yet.")
				return nil
			}
			for i := range jobs {
				printJob(os.Stdout, &jobs[i])
				fmt.Println()
			}
			return nil
		})
	},
}

func init() {
	jobsCommand.AddCommand(jobsCurrentCommand)
	jobsCommand.AddCommand(jobsListCommand)
	rootCmd.AddCommand(jobsCommand)
}

// withJobService runs fn against a job service backed only by the record
// store; inspection commands need no provider or storage credentials.
func withJobService(fn func(context.Context, *avatar.Service) error) error {
	ctx := context.Background()

	cfg := config.FromEnv()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}

	jobs, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer jobs.Close()

	return fn(ctx, avatar.NewService(jobs, nil))
}

// printJob writes a short human-readable summary of one job record.
func printJob(w io.Writer, job *avatar.GenerationJob) {
	fmt.Fprintf(w, "Period:  %s\n", avatar.PeriodKeyString(job.PeriodKey))
	fmt.Fprintf(w, "Status:  %s\n", job.Status)
	if job.AssetURL != "" {
		fmt.Fprintf(w, "Asset:   %s\n", job.AssetURL)
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:   %s\n", job.ErrorMessage)
	}
	if job.GeneratedPrompt != "" {
		fmt.Fprintf(w, "Prompt:  %s\n", job.GeneratedPrompt)
	}
	for _, h := range job.Headlines {
		fmt.Fprintf(w, "  - %s (%s)\n", h.Title, h.Source)
	}
}
