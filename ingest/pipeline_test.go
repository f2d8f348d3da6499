package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitaeworks/vitae/ai"
	"github.com/vitaeworks/vitae/ai/mock"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage/badger"
)

func newTestPipeline(t *testing.T, extractor ai.Extractor, opts ...Option) (*Pipeline, *badger.Stores) {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	pipeline, err := NewPipeline(stores.Jobs, stores.Categories, stores.Entries, extractor, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, stores
}

// waitForJob polls until the job reaches a terminal status.
func waitForJob(t *testing.T, stores *badger.Stores, id core.ID) *core.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := stores.Jobs.GetJob(context.Background(), id)
		require.NoError(t, err)
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal status")
	return nil
}

func TestSubmitValidation(t *testing.T) {
	pipeline, _ := newTestPipeline(t, mock.NewMockExtractor())

	_, err := pipeline.Submit(context.Background(), 0, "text")
	assert.ErrorIs(t, err, ErrOwnerRequired)

	_, err = pipeline.Submit(context.Background(), 1, "   \n ")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestPipelineIngestsSmallDocument(t *testing.T) {
	extractor := mock.NewMockExtractor()
	pipeline, stores := newTestPipeline(t, extractor)

	text := strings.Join([]string{
		"Name: Jane Doe",
		"Publications: Deep learning for protein folding",
		"Publications: Graph neural networks in practice",
		"Education: PhD in Computer Science",
	}, "\n")

	job, err := pipeline.Submit(context.Background(), 1, text)
	require.NoError(t, err)
	assert.Equal(t, core.JobQueued, job.Status)

	final := waitForJob(t, stores, job.Id)
	assert.Equal(t, core.JobCompleted, final.Status)
	assert.Equal(t, progressComplete, final.Progress)
	assert.Equal(t, 3, final.CreatedCount)
	assert.Equal(t, 0, final.SkippedCount)

	categories, err := stores.Categories.GetCategoriesByOwner(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Publications", categories[0].Name)
	assert.Equal(t, "Education", categories[1].Name)

	entries, err := stores.Entries.GetEntriesByCategory(context.Background(), categories[0].Id)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, core.SourceCVImport, entries[0].SourceType)
}

func TestPipelineIsIdempotentAcrossReruns(t *testing.T) {
	extractor := mock.NewMockExtractor()
	pipeline, stores := newTestPipeline(t, extractor)

	text := "Publications: A survey of retrieval\nAwards: Best paper award"

	first, err := pipeline.Submit(context.Background(), 1, text)
	require.NoError(t, err)
	waitForJob(t, stores, first.Id)

	second, err := pipeline.Submit(context.Background(), 1, text)
	require.NoError(t, err)
	final := waitForJob(t, stores, second.Id)

	assert.Equal(t, core.JobCompleted, final.Status)
	assert.Equal(t, 0, final.CreatedCount)
	assert.Equal(t, 2, final.SkippedCount)

	entries, err := stores.Entries.GetEntriesByOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPipelineToleratesFailedChunks(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.ExtractFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
		if strings.Contains(text, "POISON") {
			return nil, errors.New("model unavailable")
		}
		return &ai.Extraction{
			Categories: []ai.ExtractedCategory{
				{Name: "Publications", Entries: []ai.ExtractedEntry{{Title: strings.TrimSpace(text)[:20]}}},
			},
		}, nil
	}

	// Three paragraphs, each its own chunk; the middle one always fails.
	paragraphs := []string{
		"good paragraph one " + strings.Repeat("a", 120),
		"POISON paragraph xx " + strings.Repeat("b", 120),
		"good paragraph two " + strings.Repeat("c", 120),
	}
	text := strings.Join(paragraphs, "\n\n")

	pipeline, stores := newTestPipeline(t, extractor,
		WithChunkLimits(100, 150))

	job, err := pipeline.Submit(context.Background(), 1, text)
	require.NoError(t, err)
	final := waitForJob(t, stores, job.Id)

	assert.Equal(t, core.JobCompleted, final.Status, "one bad chunk must not fail the job")
	assert.Equal(t, 2, final.CreatedCount)
}

func TestPipelineProgressIsMonotonic(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.ExtractFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
		time.Sleep(5 * time.Millisecond)
		return ai.EmptyExtraction(), nil
	}

	text := strings.Repeat("lorem ipsum dolor sit amet\n\n", 40)
	pipeline, stores := newTestPipeline(t, extractor,
		WithChunkLimits(100, 150))

	job, err := pipeline.Submit(context.Background(), 1, text)
	require.NoError(t, err)

	var samples []int
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		current, err := stores.Jobs.GetJob(context.Background(), job.Id)
		require.NoError(t, err)
		samples = append(samples, current.Progress)
		if current.Status.Terminal() {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	for i := 1; i < len(samples); i++ {
		assert.GreaterOrEqual(t, samples[i], samples[i-1])
	}
	assert.Equal(t, progressComplete, samples[len(samples)-1])
}

func TestPipelineSequentialModeForLargeDocuments(t *testing.T) {
	extractor := mock.NewMockExtractor()
	pipeline, _ := newTestPipeline(t,
		extractor,
		WithChunkLimits(100, 150),
		WithLargeDocLimit(300))

	chunks, sequential := pipeline.plan(strings.Repeat("x", 500))
	assert.True(t, sequential)
	assert.Greater(t, len(chunks), 1)

	_, sequential = pipeline.plan(strings.Repeat("x", 80))
	assert.False(t, sequential)
}
