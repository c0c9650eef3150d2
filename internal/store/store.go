// Package store provides PostgreSQL persistence for generation job records.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the job and settings tables when they do not exist.
// The settings table holds exactly one row; the CHECK pin keeps it that way.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS generation_jobs (
			id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			period_key       DATE NOT NULL UNIQUE,
			status           TEXT NOT NULL,
			headlines        JSONB NOT NULL DEFAULT '[]',
			generated_prompt TEXT NOT NULL DEFAULT '',
			asset_url        TEXT NOT NULL DEFAULT '',
			error_message    TEXT NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS generation_settings (
			id         BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
			paused     BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure settings schema: %w", err)
	}
	return nil
}
