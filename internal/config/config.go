// Package config provides configuration loading and validation for the
// generation service. Values come from the environment (a .env file is
// loaded by main); CLI flags may override individual fields.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Config holds everything the generation commands need.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string for job records.
	DatabaseURL string `validate:"required"`

	// GeminiAPIKey authenticates every model call.
	GeminiAPIKey string `validate:"required"`

	// PrimaryProvider names the provider tried first by the cascade. Empty
	// selects the first registered provider.
	PrimaryProvider string

	// NewsAPIKey is optional; without it headline acquisition degrades to
	// the fixed fallback set.
	NewsAPIKey  string
	NewsBaseURL string
	NewsCountry string

	// ReferenceImagePath points at the likeness image blended into every
	// avatar. Optional; without it the model works from style alone.
	ReferenceImagePath string

	// Object storage for generated assets.
	StorageEndpoint  string
	StorageRegion    string
	StorageAccessKey string `validate:"required"`
	StorageSecretKey string `validate:"required"`
	StorageBucket    string `validate:"required"`
	StoragePublicURL string `validate:"required,url"`
}

// FromEnv builds a Config from environment variables.
func FromEnv() *Config {
	return &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		PrimaryProvider:    os.Getenv("PRIMARY_PROVIDER"),
		NewsAPIKey:         os.Getenv("NEWS_API_KEY"),
		NewsBaseURL:        os.Getenv("NEWS_BASE_URL"),
		NewsCountry:        os.Getenv("NEWS_COUNTRY"),
		ReferenceImagePath: os.Getenv("REFERENCE_IMAGE_PATH"),
		StorageEndpoint:    os.Getenv("STORAGE_ENDPOINT"),
		StorageRegion:      os.Getenv("STORAGE_REGION"),
		StorageAccessKey:   os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:   os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:      os.Getenv("STORAGE_BUCKET"),
		StoragePublicURL:   os.Getenv("STORAGE_PUBLIC_URL"),
	}
}

// Validate checks that every required field is populated.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// ValidatePlaylistOnly checks only the fields the interactive playlist
// command needs; it has no storage or database dependency beyond the model
// provider.
func (c *Config) ValidatePlaylistOnly() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	return nil
}
