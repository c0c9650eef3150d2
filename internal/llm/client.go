// Package llm provides the Gemini provider clients behind the generation
// cascade. Text and image calls share one underlying genai client; provider
// identity is the model name, so the fallback chain walks down the model
// catalog in a fixed order.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/sjfortin/avatar-generator/internal/cascade"
)

// Image is a binary image attachment moving in or out of a model call.
type Image struct {
	MIMEType string
	Data     []byte
}

// Format returns the genai blob format label for the image ("png", "jpeg").
func (img *Image) Format() string {
	if idx := strings.LastIndex(img.MIMEType, "/"); idx >= 0 && idx < len(img.MIMEType)-1 {
		return img.MIMEType[idx+1:]
	}
	return "png"
}

// GeminiClient wraps the genai SDK client.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini client for the given API key.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// GenerateText sends a prompt to the named model and returns the response
// text. An optional system instruction is applied when non-empty.
func (c *GeminiClient) GenerateText(ctx context.Context, modelName, system, prompt string) (string, error) {
	if modelName == "" {
		return "", fmt.Errorf("model name is required")
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrapProviderError(modelName, "failed to generate content", err)
	}

	return extractTextFromResponse(resp)
}

// GenerateImage sends a prompt (plus an optional reference image) to an
// image-capable model and returns the first image attachment in the response.
// A response with no image attachment is an error: the caller asked for an
// image, text alone is unusable.
func (c *GeminiClient) GenerateImage(ctx context.Context, modelName, prompt string, reference *Image) (*Image, error) {
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.7)

	parts := []genai.Part{genai.Text(prompt)}
	if reference != nil {
		parts = append(parts, genai.ImageData(reference.Format(), reference.Data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, wrapProviderError(modelName, "failed to generate image", err)
	}

	return extractImageFromResponse(modelName, resp)
}

// wrapProviderError reclassifies a raw genai error into the cascade's
// provider error, carrying the HTTP status when the SDK exposes one.
func wrapProviderError(provider, message string, err error) error {
	return &cascade.ProviderError{
		Provider: provider,
		Status:   httpStatus(err),
		Message:  message,
		Cause:    err,
	}
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// extractImageFromResponse extracts the first binary image attachment from a
// Gemini API response.
func extractImageFromResponse(provider string, resp *genai.GenerateContentResponse) (*Image, error) {
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				mime := blob.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return &Image{MIMEType: mime, Data: blob.Data}, nil
			}
		}
	}
	return nil, &cascade.ProviderError{
		Provider: provider,
		Message:  "no image attachment in response",
	}
}
