package playlist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/sjfortin/avatar-generator/internal/cascade"
	"github.com/sjfortin/avatar-generator/internal/prompts"
)

// Service generates playlists interactively through the provider cascade.
// It is stateless and safe for concurrent requests.
type Service struct {
	invoker  *cascade.Invoker
	primary  string
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService creates a playlist service over the given cascade. primaryID
// names the provider tried first for every request.
func NewService(invoker *cascade.Invoker, primaryID string) *Service {
	return &Service{
		invoker:  invoker,
		primary:  primaryID,
		validate: validator.New(),
		logger:   slog.Default().With("component", "playlist"),
	}
}

// Generate produces a validated playlist for the request. The caller sees one
// terminal error only after the cascade is exhausted or aborted.
func (s *Service) Generate(ctx context.Context, req Request) (*Data, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid playlist request: %w", err)
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "generating playlist",
		"primary", s.primary, "modification", req.Prior != nil)

	data, err := cascade.Invoke(ctx, s.invoker, s.primary, prompt, Parse)
	if err != nil {
		return nil, fmt.Errorf("playlist generation failed: %w", err)
	}
	return data, nil
}

// buildPrompt renders the generation prompt, switching to the modification
// template when a prior playlist is supplied.
func buildPrompt(req Request) (string, error) {
	duration := ""
	if req.DurationMinutes > 0 {
		duration = strconv.Itoa(req.DurationMinutes)
	}

	data := map[string]string{
		"Prompt":   req.Prompt,
		"Duration": duration,
		"Genre":    req.Genre,
		"Era":      req.Era,
	}

	key := "generate-playlist"
	if req.Prior != nil {
		key = "modify-playlist"
		prior, err := json.Marshal(req.Prior)
		if err != nil {
			return "", fmt.Errorf("failed to encode prior playlist: %w", err)
		}
		data["Prior"] = string(prior)
	}

	template := prompts.MustGet("playlist.json", key)
	return prompts.Format(template, data), nil
}
