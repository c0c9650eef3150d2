package llm

import (
	"context"
	"errors"

	"google.golang.org/api/googleapi"

	"github.com/sjfortin/avatar-generator/internal/cascade"
)

// ProviderSpec names one text-generation provider in the cascade. The ID is
// stable and user-facing (config, logs); the model is what the SDK is called
// with.
type ProviderSpec struct {
	ID    string
	Model string
}

// DefaultTextProviders returns the ordered provider list for text generation.
// The order is deliberate and is the fallback order: strongest model first,
// cheaper models behind it. Override via configuration, not by editing this
// list in place.
func DefaultTextProviders() []ProviderSpec {
	return []ProviderSpec{
		{ID: "gemini-pro", Model: "gemini-2.5-pro"},
		{ID: "gemini-flash", Model: "gemini-2.5-flash"},
		{ID: "gemini-flash-lite", Model: "gemini-2.5-flash-lite"},
	}
}

// DefaultImageModel is the image-capable model used for avatar synthesis.
const DefaultImageModel = "gemini-2.0-flash-preview-image-generation"

// TextProviders adapts the given specs into cascade providers backed by the
// client. The system instruction is shared by every provider in the set.
func TextProviders(client *GeminiClient, specs []ProviderSpec, system string) []cascade.Provider {
	providers := make([]cascade.Provider, 0, len(specs))
	for _, spec := range specs {
		model := spec.Model
		providers = append(providers, cascade.Provider{
			ID: spec.ID,
			Generate: func(ctx context.Context, prompt string) (string, error) {
				return client.GenerateText(ctx, model, system, prompt)
			},
		})
	}
	return providers
}

// ImageProvider binds the client to one image-capable model, satisfying the
// pipeline's image generation interface.
type ImageProvider struct {
	Client *GeminiClient
	Model  string
}

// GenerateImage produces an image for the prompt and optional reference
// likeness.
func (p *ImageProvider) GenerateImage(ctx context.Context, prompt string, reference *Image) (*Image, error) {
	return p.Client.GenerateImage(ctx, p.Model, prompt, reference)
}

// httpStatus extracts the HTTP status code from an SDK error chain, or 0 when
// none is exposed.
func httpStatus(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}
