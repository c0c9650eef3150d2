package avatar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjfortin/avatar-generator/internal/headlines"
	"github.com/sjfortin/avatar-generator/internal/llm"
)

// memStore is an in-memory JobStore keyed by period.
type memStore struct {
	jobs   map[time.Time]*GenerationJob
	order  []time.Time
	paused bool

	upserts int
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[time.Time]*GenerationJob)}
}

func (m *memStore) GetByPeriod(ctx context.Context, periodKey time.Time) (*GenerationJob, error) {
	job, ok := m.jobs[periodKey]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (m *memStore) UpsertGenerating(ctx context.Context, periodKey time.Time) (*GenerationJob, error) {
	m.upserts++
	job, ok := m.jobs[periodKey]
	if !ok {
		job = &GenerationJob{ID: uuid.New(), PeriodKey: periodKey, CreatedAt: time.Now().UTC()}
		m.jobs[periodKey] = job
		m.order = append(m.order, periodKey)
	}
	job.Status = StatusGenerating
	job.Headlines = nil
	job.GeneratedPrompt = ""
	job.AssetURL = ""
	job.ErrorMessage = ""
	job.UpdatedAt = time.Now().UTC()
	copied := *job
	return &copied, nil
}

func (m *memStore) byID(id uuid.UUID) *GenerationJob {
	for _, job := range m.jobs {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (m *memStore) MarkSuccess(ctx context.Context, id uuid.UUID, items []headlines.Headline, prompt, assetURL string) error {
	job := m.byID(id)
	if job == nil {
		return errors.New("job not found")
	}
	job.Status = StatusSuccess
	job.Headlines = items
	job.GeneratedPrompt = prompt
	job.AssetURL = assetURL
	job.ErrorMessage = ""
	return nil
}

func (m *memStore) MarkFailed(ctx context.Context, id uuid.UUID, items []headlines.Headline, prompt, errorMessage string) error {
	job := m.byID(id)
	if job == nil {
		return errors.New("job not found")
	}
	job.Status = StatusFailed
	job.Headlines = items
	job.GeneratedPrompt = prompt
	job.ErrorMessage = errorMessage
	return nil
}

func (m *memStore) Paused(ctx context.Context) (bool, error) { return m.paused, nil }

func (m *memStore) SetPaused(ctx context.Context, paused bool) error {
	m.paused = paused
	return nil
}

func (m *memStore) MostRecentSuccess(ctx context.Context) (*GenerationJob, error) {
	for i := len(m.order) - 1; i >= 0; i-- {
		if job := m.jobs[m.order[i]]; job.Status == StatusSuccess {
			copied := *job
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListSuccessful(ctx context.Context) ([]GenerationJob, error) {
	var out []GenerationJob
	for i := len(m.order) - 1; i >= 0; i-- {
		if job := m.jobs[m.order[i]]; job.Status == StatusSuccess {
			out = append(out, *job)
		}
	}
	return out, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newServiceUnderTest(store JobStore, text *fakeText, image *fakeImage, assets *fakeAssets) *Service {
	svc := NewService(store, newTestPipeline(text, image, assets))
	return svc.WithClock(fixedClock(time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)))
}

func workingProviders() (*fakeText, *fakeImage, *fakeAssets) {
	text := &fakeText{response: "A warm scene."}
	image := &fakeImage{image: &llm.Image{MIMEType: "image/png", Data: []byte("png")}}
	assets := &fakeAssets{url: "https://cdn.example.com/avatars/2026-08-31.png"}
	return text, image, assets
}

func TestService_RunForCurrentPeriod_Success(t *testing.T) {
	store := newMemStore()
	text, image, assets := workingProviders()
	svc := newServiceUnderTest(store, text, image, assets)

	job, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, job)

	assert.Equal(t, StatusSuccess, job.Status)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), job.PeriodKey)
	assert.Equal(t, assets.url, job.AssetURL)
	assert.Equal(t, "A warm scene.", job.GeneratedPrompt)
	assert.Equal(t, testHeadlines(), job.Headlines)
	assert.Empty(t, job.ErrorMessage)
}

func TestService_RunForCurrentPeriod_IdempotentOnSuccess(t *testing.T) {
	store := newMemStore()
	text, image, assets := workingProviders()
	svc := newServiceUnderTest(store, text, image, assets)

	first, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)

	second, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.AssetURL, second.AssetURL)
	// No providers are touched on the repeat run.
	assert.Len(t, text.prompts, 1)
	assert.Len(t, image.prompts, 1)
	assert.Len(t, assets.keys, 1)
	assert.Equal(t, 1, store.upserts)
}

func TestService_RunForCurrentPeriod_ForceRegenerates(t *testing.T) {
	store := newMemStore()
	text, image, assets := workingProviders()
	svc := newServiceUnderTest(store, text, image, assets)

	_, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)

	job, err := svc.RunForCurrentPeriod(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, job.Status)
	assert.Len(t, image.prompts, 2)
	assert.Equal(t, 2, store.upserts)
}

func TestService_RunForCurrentPeriod_PausedAbortsWithoutMutation(t *testing.T) {
	store := newMemStore()
	store.paused = true
	text, image, assets := workingProviders()
	svc := newServiceUnderTest(store, text, image, assets)

	job, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.ErrorIs(t, err, ErrPaused)
	assert.Nil(t, job)

	assert.Empty(t, store.jobs)
	assert.Empty(t, text.prompts)
	assert.Empty(t, image.prompts)
}

func TestService_RunForCurrentPeriod_PauseDoesNotMaskExistingSuccess(t *testing.T) {
	store := newMemStore()
	text, image, assets := workingProviders()
	svc := newServiceUnderTest(store, text, image, assets)

	first, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)

	// Pausing afterwards still lets callers read the finished record.
	store.paused = true
	second, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestService_RunForCurrentPeriod_PipelineFailureRecordedNotRaised(t *testing.T) {
	store := newMemStore()
	text := &fakeText{response: "A warm scene."}
	image := &fakeImage{err: errors.New("model refused")}
	assets := &fakeAssets{}
	svc := newServiceUnderTest(store, text, image, assets)

	job, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, job)

	assert.Equal(t, StatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "image-synthesis")
	// Partial outputs from the earlier stages are retained.
	assert.Equal(t, testHeadlines(), job.Headlines)
	assert.Equal(t, "A warm scene.", job.GeneratedPrompt)
	assert.Empty(t, job.AssetURL)
}

func TestService_RunForCurrentPeriod_RetryAfterFailure(t *testing.T) {
	store := newMemStore()
	text := &fakeText{response: "A warm scene."}
	image := &fakeImage{err: errors.New("model refused")}
	assets := &fakeAssets{url: "https://cdn.example.com/a.png"}
	svc := newServiceUnderTest(store, text, image, assets)

	failed, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, failed.Status)

	// The provider recovers; a plain re-run retries the failed period.
	image.err = nil
	image.image = &llm.Image{MIMEType: "image/png", Data: []byte("png")}

	job, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, job.Status)
	assert.Equal(t, failed.ID, job.ID)
	assert.Empty(t, job.ErrorMessage)
}

func TestService_RunForCurrentPeriod_DegradedSuccess(t *testing.T) {
	// Headlines fall back, mood prompt falls back, yet the run succeeds.
	store := newMemStore()
	text := &fakeText{err: errors.New("text providers exhausted")}
	image := &fakeImage{image: &llm.Image{MIMEType: "image/png", Data: []byte("png")}}
	assets := &fakeAssets{url: "https://cdn.example.com/a.png"}

	pipeline := &Pipeline{
		Headlines: &fakeHeadlines{items: headlines.Fallback()},
		Text:      text,
		Image:     image,
		Assets:    assets,
	}
	svc := NewService(store, pipeline).
		WithClock(fixedClock(time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)))

	job, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, job.Status)
	assert.Equal(t, headlines.Fallback(), job.Headlines)
	assert.Equal(t, fallbackMoodPrompt, job.GeneratedPrompt)
	assert.Equal(t, assets.url, job.AssetURL)
}

func TestService_CurrentOrMostRecentSuccessful(t *testing.T) {
	store := newMemStore()
	text, image, assets := workingProviders()
	svc := newServiceUnderTest(store, text, image, assets)

	// Nothing yet.
	job, err := svc.CurrentOrMostRecentSuccessful(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)

	// A previous week's success is surfaced when the current period has no
	// record.
	past := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	prev, err := store.UpsertGenerating(context.Background(), past)
	require.NoError(t, err)
	require.NoError(t, store.MarkSuccess(context.Background(), prev.ID, nil, "p", "https://cdn.example.com/old.png"))

	job, err = svc.CurrentOrMostRecentSuccessful(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, past, job.PeriodKey)

	// Once the current period has a record it wins, whatever its status.
	current, err := svc.RunForCurrentPeriod(context.Background(), false)
	require.NoError(t, err)

	job, err = svc.CurrentOrMostRecentSuccessful(context.Background())
	require.NoError(t, err)
	assert.Equal(t, current.ID, job.ID)
}

func TestService_SetPaused(t *testing.T) {
	store := newMemStore()
	text, image, assets := workingProviders()
	svc := newServiceUnderTest(store, text, image, assets)

	require.NoError(t, svc.SetPaused(context.Background(), true))
	assert.True(t, store.paused)

	require.NoError(t, svc.SetPaused(context.Background(), false))
	assert.False(t, store.paused)
}
