package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sjfortin/avatar-generator/internal/avatar"
	"github.com/sjfortin/avatar-generator/internal/headlines"
)

const jobColumns = `id, period_key, status, headlines, generated_prompt,
	asset_url, error_message, created_at, updated_at`

// GetByPeriod returns the job for the period key, or nil when absent.
func (s *Store) GetByPeriod(ctx context.Context, periodKey time.Time) (*avatar.GenerationJob, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs WHERE period_key = $1`,
		periodKey)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// UpsertGenerating creates or resets the period's record to the generating
// state, clearing any prior outputs. The unique period_key makes this the
// idempotency anchor: repeat triggers land on the same row.
func (s *Store) UpsertGenerating(ctx context.Context, periodKey time.Time) (*avatar.GenerationJob, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO generation_jobs (period_key, status)
		 VALUES ($1, $2)
		 ON CONFLICT (period_key) DO UPDATE SET
			status = $2,
			headlines = '[]',
			generated_prompt = '',
			asset_url = '',
			error_message = '',
			updated_at = NOW()
		 RETURNING `+jobColumns,
		periodKey, avatar.StatusGenerating)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert job: %w", err)
	}
	return job, nil
}

// MarkSuccess finalizes the job with its full outputs.
func (s *Store) MarkSuccess(ctx context.Context, id uuid.UUID, items []headlines.Headline, prompt, assetURL string) error {
	headlinesJSON, err := encodeHeadlines(items)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE generation_jobs SET
			status = $1, headlines = $2, generated_prompt = $3,
			asset_url = $4, error_message = '', updated_at = NOW()
		 WHERE id = $5`,
		avatar.StatusSuccess, headlinesJSON, prompt, assetURL, id)
	if err != nil {
		return fmt.Errorf("failed to mark job success: %w", err)
	}
	return nil
}

// MarkFailed finalizes the job as failed, retaining partial outputs.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, items []headlines.Headline, prompt, errorMessage string) error {
	headlinesJSON, err := encodeHeadlines(items)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE generation_jobs SET
			status = $1, headlines = $2, generated_prompt = $3,
			error_message = $4, updated_at = NOW()
		 WHERE id = $5`,
		avatar.StatusFailed, headlinesJSON, prompt, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

// Paused reports the kill switch from the single settings row. A missing row
// means the flag has never been set.
func (s *Store) Paused(ctx context.Context) (bool, error) {
	var paused bool
	err := s.pool.QueryRow(ctx,
		`SELECT paused FROM generation_settings WHERE id`,
	).Scan(&paused)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read pause flag: %w", err)
	}
	return paused, nil
}

// SetPaused flips the kill switch, creating the settings row on first use.
func (s *Store) SetPaused(ctx context.Context, paused bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO generation_settings (id, paused) VALUES (TRUE, $1)
		 ON CONFLICT (id) DO UPDATE SET paused = $1, updated_at = NOW()`,
		paused)
	if err != nil {
		return fmt.Errorf("failed to set pause flag: %w", err)
	}
	return nil
}

// MostRecentSuccess returns the latest successful job, or nil.
func (s *Store) MostRecentSuccess(ctx context.Context) (*avatar.GenerationJob, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs
		 WHERE status = $1 ORDER BY period_key DESC LIMIT 1`,
		avatar.StatusSuccess)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get most recent success: %w", err)
	}
	return job, nil
}

// ListSuccessful returns all successful jobs, newest first.
func (s *Store) ListSuccessful(ctx context.Context) ([]avatar.GenerationJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs
		 WHERE status = $1 ORDER BY period_key DESC`,
		avatar.StatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("failed to list successful jobs: %w", err)
	}
	defer rows.Close()

	var jobs []avatar.GenerationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// scanJob scans one job row, decoding the embedded headlines.
func scanJob(row pgx.Row) (*avatar.GenerationJob, error) {
	var job avatar.GenerationJob
	var headlinesJSON []byte
	err := row.Scan(&job.ID, &job.PeriodKey, &job.Status, &headlinesJSON,
		&job.GeneratedPrompt, &job.AssetURL, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(headlinesJSON) > 0 {
		if err := json.Unmarshal(headlinesJSON, &job.Headlines); err != nil {
			return nil, fmt.Errorf("failed to decode headlines: %w", err)
		}
	}
	return &job, nil
}

func encodeHeadlines(items []headlines.Headline) ([]byte, error) {
	if items == nil {
		items = []headlines.Headline{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode headlines: %w", err)
	}
	return data, nil
}
