package avatar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sjfortin/avatar-generator/internal/headlines"
	"github.com/sjfortin/avatar-generator/internal/llm"
	"github.com/sjfortin/avatar-generator/internal/prompts"
)

// headlineCount is the fixed number of top headlines requested per run.
const headlineCount = 5

// fallbackMoodPrompt is the fixed neutral description used when the text
// model cannot produce one.
const fallbackMoodPrompt = "A calm abstract scene of soft morning light over " +
	"gentle rolling shapes, with muted blues and warm amber accents. The " +
	"atmosphere is quiet and a little optimistic, like the start of an " +
	"ordinary week."

// HeadlineSource provides the week's headlines. Implementations never fail;
// they substitute fallbacks instead.
type HeadlineSource interface {
	TopHeadlines(ctx context.Context, limit int) []headlines.Headline
}

// TextInvoker produces free text for a prompt, typically the provider
// cascade.
type TextInvoker interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator produces an image for a prompt and optional reference
// likeness.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, reference *llm.Image) (*llm.Image, error)
}

// AssetStore persists a binary blob and returns its durable public URL.
type AssetStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Pipeline runs the four ordered generation stages. Stages 1 and 2 degrade
// to fixed fallbacks and never fail the run; stages 3 and 4 are the only hard
// failure points.
type Pipeline struct {
	Headlines HeadlineSource
	Text      TextInvoker
	Image     ImageGenerator
	Assets    AssetStore
	Reference *llm.Image
	Logger    *slog.Logger
}

// Result holds the outputs produced so far. On stage failure the result is
// still returned with everything the earlier stages produced, so diagnostics
// are never discarded.
type Result struct {
	Headlines []headlines.Headline
	Prompt    string
	AssetURL  string
}

// Run executes the stages sequentially for one period. Each stage consumes
// the previous stage's output; there is no internal parallelism and every
// call blocks until response or error.
func (p *Pipeline) Run(ctx context.Context, periodKey time.Time) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default().With("component", "pipeline")
	}
	result := &Result{}

	// Stage 1: headline acquisition. Never raises.
	result.Headlines = p.Headlines.TopHeadlines(ctx, headlineCount)
	logger.InfoContext(ctx, "headlines acquired", "count", len(result.Headlines))

	// Stage 2: prompt synthesis. Never raises.
	result.Prompt = p.synthesizeMoodPrompt(ctx, logger, result.Headlines)

	// Stage 3: image synthesis. First point the pipeline can hard-fail.
	imagePrompt := prompts.Format(prompts.MustGet("avatar.json", "image-style"),
		map[string]string{"Mood": result.Prompt})
	image, err := p.Image.GenerateImage(ctx, imagePrompt, p.Reference)
	if err != nil {
		return result, &StageError{Stage: "image-synthesis", Cause: err}
	}
	if image == nil || len(image.Data) == 0 {
		return result, &StageError{Stage: "image-synthesis", Cause: fmt.Errorf("model produced no image")}
	}
	logger.InfoContext(ctx, "image synthesized", "bytes", len(image.Data), "mime", image.MIMEType)

	// Stage 4: asset upload.
	key := assetKey(periodKey, image)
	url, err := p.Assets.Upload(ctx, key, image.Data, image.MIMEType)
	if err != nil {
		return result, &StageError{Stage: "asset-upload", Cause: err}
	}
	result.AssetURL = url

	return result, nil
}

// synthesizeMoodPrompt turns the headlines into a short abstract visual-mood
// description via the text cascade, degrading to the fixed neutral fallback
// on any terminal failure.
func (p *Pipeline) synthesizeMoodPrompt(ctx context.Context, logger *slog.Logger, items []headlines.Headline) string {
	var sb strings.Builder
	for _, h := range items {
		sb.WriteString("- ")
		sb.WriteString(h.Title)
		if h.Source != "" {
			sb.WriteString(" (")
			sb.WriteString(h.Source)
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}

	prompt := prompts.Format(prompts.MustGet("avatar.json", "mood-prompt"),
		map[string]string{"Headlines": sb.String()})

	mood, err := p.Text.Generate(ctx, prompt)
	if err != nil {
		logger.WarnContext(ctx, "mood prompt synthesis failed, using fallback prompt", "error", err)
		return fallbackMoodPrompt
	}
	mood = strings.TrimSpace(mood)
	if mood == "" {
		logger.WarnContext(ctx, "mood prompt synthesis returned empty text, using fallback prompt")
		return fallbackMoodPrompt
	}
	return mood
}

// assetKey derives the deterministic object key for a period's avatar.
func assetKey(periodKey time.Time, image *llm.Image) string {
	ext := "png"
	if image != nil {
		ext = image.Format()
	}
	return fmt.Sprintf("avatars/%s.%s", PeriodKeyString(periodKey), ext)
}
