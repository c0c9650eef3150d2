// Package avatar implements the weekly avatar generation job: the idempotent
// per-period state machine and the four-stage pipeline it drives.
package avatar

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sjfortin/avatar-generator/internal/headlines"
)

// Job statuses. There is no persisted pending state: absence of a record for
// a period means generation has not started.
const (
	StatusGenerating = "generating"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
)

// GenerationJob is the persisted record of one week's avatar generation.
// Exactly one record exists per period key; records are never deleted and
// status changes are updates to the same row.
type GenerationJob struct {
	ID              uuid.UUID            `json:"id"`
	PeriodKey       time.Time            `json:"period_key"`
	Status          string               `json:"status"`
	Headlines       []headlines.Headline `json:"headlines"`
	GeneratedPrompt string               `json:"generated_prompt"`
	AssetURL        string               `json:"asset_url,omitempty"`
	ErrorMessage    string               `json:"error_message,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// JobStore is the persistent record store for generation jobs, keyed by
// period. Implementations must provide atomic upsert-by-period and point
// lookup.
type JobStore interface {
	// GetByPeriod returns the job for the period key, or nil when absent.
	GetByPeriod(ctx context.Context, periodKey time.Time) (*GenerationJob, error)

	// UpsertGenerating creates the period's record in the generating state,
	// or resets an existing record to it, clearing any prior headlines,
	// prompt, asset URL and error message.
	UpsertGenerating(ctx context.Context, periodKey time.Time) (*GenerationJob, error)

	// MarkSuccess finalizes the job with its full outputs.
	MarkSuccess(ctx context.Context, id uuid.UUID, items []headlines.Headline, prompt, assetURL string) error

	// MarkFailed finalizes the job as failed, retaining whatever partial
	// outputs the pipeline produced before the failing stage.
	MarkFailed(ctx context.Context, id uuid.UUID, items []headlines.Headline, prompt, errorMessage string) error

	// Paused reports whether the kill switch is engaged.
	Paused(ctx context.Context) (bool, error)

	// SetPaused engages or clears the kill switch.
	SetPaused(ctx context.Context, paused bool) error

	// MostRecentSuccess returns the latest successful job, or nil.
	MostRecentSuccess(ctx context.Context) (*GenerationJob, error)

	// ListSuccessful returns all successful jobs, newest first.
	ListSuccessful(ctx context.Context) ([]GenerationJob, error)
}
