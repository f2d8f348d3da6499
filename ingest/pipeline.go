// Copyright 2026 Vitae Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/vitaeworks/vitae/ai"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/segment"
	"github.com/vitaeworks/vitae/storage"
)

const (
	// Documents at or below this rune count go to the extractor whole.
	defaultSingleChunkLimit = 8000

	// Per-chunk budget once a document is split. Smaller chunks bound the
	// extraction service's worst-case latency and failure blast radius.
	defaultChunkBudget = 6000

	// Documents above this rune count are processed sequentially with a
	// trailing overlap; the dedup gate absorbs the duplicated text.
	defaultLargeDocLimit = 24000

	// Trailing carryover between chunks in sequential mode.
	defaultChunkOverlap = 500

	// Chunks extracted concurrently for moderate-sized documents.
	defaultBatchSize = 3

	// Jobs processed concurrently across the whole system. Extraction
	// calls are the scarce resource being protected.
	defaultPoolSize = 2
)

// Pipeline orchestrates document ingestion jobs: segmentation, extraction,
// merge and dedup-gated persistence, with progress reported on the job
// record. A bounded worker pool caps how many jobs run at once.
type Pipeline struct {
	jobs       storage.JobRepository
	categories storage.CategoryRepository
	entries    storage.EntryRepository
	extractor  ai.Extractor
	pool       *ants.Pool
	logger     *slog.Logger

	singleChunkLimit int
	chunkBudget      int
	largeDocLimit    int
	chunkOverlap     int
	batchSize        int
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets how many jobs may run concurrently. Default is 2.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkLimits overrides the single-chunk and per-chunk size budgets.
func WithChunkLimits(singleChunkLimit, chunkBudget int) Option {
	return func(p *Pipeline) error {
		if singleChunkLimit > 0 {
			p.singleChunkLimit = singleChunkLimit
		}
		if chunkBudget > 0 {
			p.chunkBudget = chunkBudget
		}
		return nil
	}
}

// WithLargeDocLimit overrides the sequential-processing threshold.
func WithLargeDocLimit(limit int) Option {
	return func(p *Pipeline) error {
		if limit > 0 {
			p.largeDocLimit = limit
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	jobs storage.JobRepository,
	categories storage.CategoryRepository,
	entries storage.EntryRepository,
	extractor ai.Extractor,
	opts ...Option,
) (*Pipeline, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if categories == nil {
		return nil, ErrCategoryRepositoryRequired
	}
	if entries == nil {
		return nil, ErrEntryRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		jobs:             jobs,
		categories:       categories,
		entries:          entries,
		extractor:        extractor,
		pool:             pool,
		logger:           slog.Default().With("component", "ingest"),
		singleChunkLimit: defaultSingleChunkLimit,
		chunkBudget:      defaultChunkBudget,
		largeDocLimit:    defaultLargeDocLimit,
		chunkOverlap:     defaultChunkOverlap,
		batchSize:        defaultBatchSize,
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Submit validates the document, records a queued job and schedules it on
// the worker pool. It returns the queued job immediately; progress and the
// terminal state are observed through the job repository.
func (p *Pipeline) Submit(ctx context.Context, ownerID core.ID, text string) (*core.Job, error) {
	if ownerID == 0 {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	job, err := p.jobs.AddJob(ctx, &core.Job{
		OwnerId: ownerID,
		Status:  core.JobQueued,
	})
	if err != nil {
		return nil, err
	}

	jobID := job.Id
	// Submit blocks while the pool is saturated, so hand off from a
	// goroutine to keep the caller's queue semantics.
	go func() {
		submitErr := p.pool.Submit(func() {
			p.run(context.Background(), jobID, ownerID, text)
		})
		if submitErr != nil {
			p.logger.Error("job could not be scheduled", "job", jobID, "err", submitErr)
			p.fail(context.Background(), jobID, submitErr)
		}
	}()

	return job, nil
}

// run drives one job from queued to a terminal state.
func (p *Pipeline) run(ctx context.Context, jobID, ownerID core.ID, text string) {
	logger := p.logger.With("job", jobID, "owner", ownerID)

	if err := p.transition(ctx, jobID, core.JobActive, progressSetupDone); err != nil {
		logger.Error("job could not be started", "err", err)
		return
	}

	chunks, sequential := p.plan(text)
	logger.Info("document segmented", "chunks", len(chunks), "sequential", sequential)

	var results []*ai.Extraction
	if sequential {
		results = p.extractSequential(ctx, jobID, chunks)
	} else {
		results = p.extractBatched(ctx, jobID, chunks)
	}

	merged := Merge(results...)
	if err := p.progress(ctx, jobID, progressPersistReady); err != nil {
		logger.Error("progress update failed", "err", err)
	}

	pers := &persister{
		categories: p.categories,
		entries:    p.entries,
		logger:     logger,
	}
	tally, err := pers.run(ctx, ownerID, merged, func(done, total int) {
		if perr := p.progress(ctx, jobID, categoryProgress(done, total)); perr != nil {
			logger.Error("progress update failed", "err", perr)
		}
	})
	if err != nil {
		logger.Error("persistence failed", "err", err)
		p.fail(ctx, jobID, err)
		return
	}

	if err := p.complete(ctx, jobID, tally); err != nil {
		logger.Error("job could not be completed", "err", err)
		return
	}
	logger.Info("job completed", "created", tally.Created, "skipped", tally.Skipped)
}

// plan chooses the chunking strategy for a document.
func (p *Pipeline) plan(text string) (chunks []segment.Chunk, sequential bool) {
	size := len([]rune(text))
	switch {
	case size <= p.singleChunkLimit:
		return segment.Split(text, p.singleChunkLimit), false
	case size > p.largeDocLimit:
		return segment.SplitWithOverlap(text, p.chunkBudget, p.chunkOverlap), true
	default:
		return segment.Split(text, p.chunkBudget), false
	}
}

// extractSequential processes chunks one at a time, in index order.
func (p *Pipeline) extractSequential(ctx context.Context, jobID core.ID, chunks []segment.Chunk) []*ai.Extraction {
	results := make([]*ai.Extraction, len(chunks))
	for i, chunk := range chunks {
		results[i] = p.extractChunk(ctx, jobID, chunk)
		if err := p.progress(ctx, jobID, extractionProgress(i+1, len(chunks))); err != nil {
			p.logger.Error("progress update failed", "job", jobID, "err", err)
		}
	}
	return results
}

// extractBatched processes chunks in small concurrent batches.
func (p *Pipeline) extractBatched(ctx context.Context, jobID core.ID, chunks []segment.Chunk) []*ai.Extraction {
	results := make([]*ai.Extraction, len(chunks))
	done := 0
	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = p.extractChunk(ctx, jobID, chunks[i])
			}(i)
		}
		wg.Wait()

		done = end
		if err := p.progress(ctx, jobID, extractionProgress(done, len(chunks))); err != nil {
			p.logger.Error("progress update failed", "job", jobID, "err", err)
		}
	}
	return results
}

// extractChunk calls the extractor for one chunk. A failed chunk degrades
// to an empty result so the rest of the job still lands.
func (p *Pipeline) extractChunk(ctx context.Context, jobID core.ID, chunk segment.Chunk) *ai.Extraction {
	result, err := p.extractor.Extract(ctx, chunk.Text)
	if err != nil {
		p.logger.Warn("chunk extraction failed, continuing without it",
			"job", jobID, "chunk", chunk.Index, "err", err)
		return ai.EmptyExtraction()
	}
	return result
}

// transition moves a job to a new status, validating the status change.
func (p *Pipeline) transition(ctx context.Context, jobID core.ID, status core.JobStatus, progress int) error {
	job, err := p.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := core.ValidateJobTransition(job.Status, status); err != nil {
		return err
	}
	job.Status = status
	if progress > job.Progress {
		job.Progress = progress
	}
	_, err = p.jobs.UpdateJob(ctx, job)
	return err
}

// progress raises a job's progress. Regressions are dropped, never written.
func (p *Pipeline) progress(ctx context.Context, jobID core.ID, value int) error {
	job, err := p.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if value <= job.Progress {
		return nil
	}
	job.Progress = value
	_, err = p.jobs.UpdateJob(ctx, job)
	return err
}

// complete marks a job completed with its tally and full progress.
func (p *Pipeline) complete(ctx context.Context, jobID core.ID, tally persistResult) error {
	job, err := p.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := core.ValidateJobTransition(job.Status, core.JobCompleted); err != nil {
		return err
	}
	job.Status = core.JobCompleted
	job.Progress = progressComplete
	job.CreatedCount = tally.Created
	job.SkippedCount = tally.Skipped
	_, err = p.jobs.UpdateJob(ctx, job)
	return err
}

// fail marks a job failed with a human-readable message. Progress keeps
// its last value; it only reaches 100 on success.
func (p *Pipeline) fail(ctx context.Context, jobID core.ID, cause error) {
	job, err := p.jobs.GetJob(ctx, jobID)
	if err != nil {
		p.logger.Error("failed job could not be loaded", "job", jobID, "err", err)
		return
	}
	if err := core.ValidateJobTransition(job.Status, core.JobFailed); err != nil {
		p.logger.Error("failed job in unexpected state", "job", jobID, "err", err)
		return
	}
	job.Status = core.JobFailed
	job.Error = cause.Error()
	if _, err := p.jobs.UpdateJob(ctx, job); err != nil {
		p.logger.Error("failed job could not be stored", "job", jobID, "err", err)
	}
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
