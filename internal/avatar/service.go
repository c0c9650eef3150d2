package avatar

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service is the weekly job state machine. It enforces per-period
// idempotency and the pause kill-switch, drives the pipeline, and persists
// the final record.
//
// Concurrent triggers for the same period are not mutually excluded; the
// upsert-by-period-key pattern keeps the record unique, but at-most-one
// concurrent generation per period is a desired property, not a structurally
// enforced one.
type Service struct {
	store    JobStore
	pipeline *Pipeline
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates the weekly job service.
func NewService(store JobStore, pipeline *Pipeline) *Service {
	return &Service{
		store:    store,
		pipeline: pipeline,
		logger:   slog.Default().With("component", "avatar"),
		now:      time.Now,
	}
}

// WithClock overrides the service clock. Used by tests to pin the period.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RunForCurrentPeriod executes one generation cycle for the current week.
//
// A record already in the success state is returned unchanged without any
// provider calls, unless force is set. When the kill switch is engaged the
// run aborts with ErrPaused and nothing is created or mutated. Pipeline
// failures do not surface as errors here: they are recorded on the persisted
// job (status failed, non-empty error message, partial outputs retained) and
// the failed record is returned. Only the pause short-circuit and record
// store failures produce an explicit error.
func (s *Service) RunForCurrentPeriod(ctx context.Context, force bool) (*GenerationJob, error) {
	periodKey := ComputePeriodKey(s.now())
	logger := s.logger.With("period", PeriodKeyString(periodKey))

	existing, err := s.store.GetByPeriod(ctx, periodKey)
	if err != nil {
		return nil, fmt.Errorf("failed to look up job record: %w", err)
	}
	if existing != nil && existing.Status == StatusSuccess && !force {
		logger.InfoContext(ctx, "generation already succeeded for period, returning existing record")
		return existing, nil
	}

	paused, err := s.store.Paused(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read pause flag: %w", err)
	}
	if paused {
		logger.InfoContext(ctx, "generation paused, skipping run")
		return nil, ErrPaused
	}

	// Creates the record on first run and resets a failed one for retry.
	job, err := s.store.UpsertGenerating(ctx, periodKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}

	result, runErr := s.pipeline.Run(ctx, periodKey)
	if runErr != nil {
		logger.WarnContext(ctx, "pipeline failed", "error", runErr)
		if err := s.store.MarkFailed(ctx, job.ID, result.Headlines, result.Prompt, runErr.Error()); err != nil {
			return nil, fmt.Errorf("failed to record pipeline failure: %w", err)
		}
		return s.store.GetByPeriod(ctx, periodKey)
	}

	if err := s.store.MarkSuccess(ctx, job.ID, result.Headlines, result.Prompt, result.AssetURL); err != nil {
		return nil, fmt.Errorf("failed to record pipeline success: %w", err)
	}
	logger.InfoContext(ctx, "generation succeeded", "asset_url", result.AssetURL)

	return s.store.GetByPeriod(ctx, periodKey)
}

// CurrentOrMostRecentSuccessful returns the current period's job when it
// exists, otherwise the most recent successful job, otherwise nil.
func (s *Service) CurrentOrMostRecentSuccessful(ctx context.Context) (*GenerationJob, error) {
	periodKey := ComputePeriodKey(s.now())

	current, err := s.store.GetByPeriod(ctx, periodKey)
	if err != nil {
		return nil, fmt.Errorf("failed to look up current job: %w", err)
	}
	if current != nil {
		return current, nil
	}

	return s.store.MostRecentSuccess(ctx)
}

// ListSuccessful returns every successful job, newest first.
func (s *Service) ListSuccessful(ctx context.Context) ([]GenerationJob, error) {
	return s.store.ListSuccessful(ctx)
}

// SetPaused engages or clears the kill switch. Future runs abort with
// ErrPaused until it is cleared.
func (s *Service) SetPaused(ctx context.Context, paused bool) error {
	if err := s.store.SetPaused(ctx, paused); err != nil {
		return fmt.Errorf("failed to update pause flag: %w", err)
	}
	s.logger.Info("pause flag updated", "paused", paused)
	return nil
}
