package pubmed

import (
	"context"
	"log/slog"

	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage"
)

// Enricher resolves missing external identifiers: for each entry without a
// SourceId it searches PubMed by title and applies the top match's PMID.
//
// Processing is strictly sequential. The searcher's limiter spaces the two
// calls each lookup costs; running items in parallel would defeat that and
// risk an NCBI ban.
type Enricher struct {
	searcher Searcher
	entries  storage.EntryRepository
	logger   *slog.Logger
}

// NewEnricher creates an Enricher.
func NewEnricher(searcher Searcher, entries storage.EntryRepository, logger *slog.Logger) (*Enricher, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if entries == nil {
		return nil, ErrEntryRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default().With("component", "pubmed")
	}
	return &Enricher{
		searcher: searcher,
		entries:  entries,
		logger:   logger,
	}, nil
}

// EnrichResult is the aggregate tally of one enrichment run.
type EnrichResult struct {
	Enriched int
	Missed   int
	Failed   int
}

// Run enriches all of an owner's entries that lack an identifier. A failed
// or empty lookup never halts the batch; it is tallied and the loop moves on.
func (e *Enricher) Run(ctx context.Context, ownerID core.ID) (EnrichResult, error) {
	var result EnrichResult

	missing, err := e.entries.GetEntriesWithoutSource(ctx, ownerID)
	if err != nil {
		return result, err
	}
	e.logger.Info("enrichment started", "owner", ownerID, "entries", len(missing))

	for _, entry := range missing {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		matches, err := e.searcher.SearchByTitle(ctx, entry.Title, 1)
		if err != nil {
			e.logger.Warn("title search failed", "entry", entry.Id, "err", err)
			result.Failed++
			continue
		}
		if len(matches) == 0 || matches[0].PMID == "" {
			result.Missed++
			continue
		}

		entry.SourceId = matches[0].PMID
		if _, err := e.entries.UpdateEntries(ctx, entry); err != nil {
			e.logger.Warn("entry update failed", "entry", entry.Id, "err", err)
			result.Failed++
			continue
		}
		result.Enriched++
	}

	e.logger.Info("enrichment finished",
		"owner", ownerID,
		"enriched", result.Enriched,
		"missed", result.Missed,
		"failed", result.Failed)
	return result, nil
}
