package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sjfortin/avatar-generator/internal/avatar"
	"github.com/sjfortin/avatar-generator/internal/cascade"
	"github.com/sjfortin/avatar-generator/internal/config"
	"github.com/sjfortin/avatar-generator/internal/headlines"
	"github.com/sjfortin/avatar-generator/internal/llm"
	"github.com/sjfortin/avatar-generator/internal/storage"
	"github.com/sjfortin/avatar-generator/internal/store"
)

// buildCascade creates the Gemini client and the text-provider cascade over
// the default ordered model list. The returned primary is the configured one,
// defaulting to the first registered provider.
func buildCascade(ctx context.Context, cfg *config.Config) (*llm.GeminiClient, *cascade.Invoker, string, error) {
	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to create model client: %w", err)
	}

	specs := llm.DefaultTextProviders()
	invoker := cascade.NewInvoker(llm.TextProviders(client, specs, "")...)

	primary := cfg.PrimaryProvider
	if primary == "" {
		primary = specs[0].ID
	}

	return client, invoker, primary, nil
}

// buildAvatarService wires the full weekly job: store, cascade, image
// provider, headline source and asset storage.
func buildAvatarService(ctx context.Context, cfg *config.Config) (*avatar.Service, *store.Store, *llm.GeminiClient, error) {
	jobs, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := jobs.EnsureSchema(ctx); err != nil {
		jobs.Close()
		return nil, nil, nil, err
	}

	client, invoker, primary, err := buildCascade(ctx, cfg)
	if err != nil {
		jobs.Close()
		return nil, nil, nil, err
	}

	assets, err := storage.New(ctx, storage.Config{
		Endpoint:      cfg.StorageEndpoint,
		Region:        cfg.StorageRegion,
		AccessKey:     cfg.StorageAccessKey,
		SecretKey:     cfg.StorageSecretKey,
		Bucket:        cfg.StorageBucket,
		PublicBaseURL: cfg.StoragePublicURL,
	})
	if err != nil {
		jobs.Close()
		_ = client.Close()
		return nil, nil, nil, err
	}

	reference, err := loadReferenceImage(cfg.ReferenceImagePath)
	if err != nil {
		jobs.Close()
		_ = client.Close()
		return nil, nil, nil, err
	}

	pipeline := &avatar.Pipeline{
		Headlines: headlines.NewClient(cfg.NewsBaseURL, cfg.NewsAPIKey, cfg.NewsCountry),
		Text:      &cascade.TextInvoker{Invoker: invoker, Primary: primary},
		Image:     &llm.ImageProvider{Client: client, Model: llm.DefaultImageModel},
		Assets:    assets,
		Reference: reference,
	}

	return avatar.NewService(jobs, pipeline), jobs, client, nil
}

// loadReferenceImage reads the likeness image from disk. A missing path is
// allowed and yields nil.
func loadReferenceImage(path string) (*llm.Image, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference image: %w", err)
	}

	mime := "image/png"
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".jpg" || ext == ".jpeg" {
		mime = "image/jpeg"
	}
	return &llm.Image{MIMEType: mime, Data: data}, nil
}
