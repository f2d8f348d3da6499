package pubmed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitaeworks/vitae/core"
)

func TestEnricherAppliesTopMatch(t *testing.T) {
	searcher := &testSearcher{
		byTitle: func(ctx context.Context, title string, max int) ([]Candidate, error) {
			switch title {
			case "Findable paper":
				return []Candidate{{PMID: "111", Title: title}}, nil
			case "Obscure workshop abstract":
				return nil, nil
			default:
				return nil, errors.New("timeout")
			}
		},
	}

	_, stores := newTestReconciler(t, searcher)
	ctx := context.Background()
	owner := core.ID(9)
	categoryID := seedCategory(t, stores, owner)

	_, err := stores.Entries.AddEntries(ctx,
		&core.Entry{OwnerId: owner, CategoryId: categoryID, Title: "Findable paper",
			SourceType: core.SourceCVImport},
		&core.Entry{OwnerId: owner, CategoryId: categoryID, Title: "Obscure workshop abstract",
			SourceType: core.SourceCVImport},
		&core.Entry{OwnerId: owner, CategoryId: categoryID, Title: "Crashes the service",
			SourceType: core.SourceCVImport},
		&core.Entry{OwnerId: owner, CategoryId: categoryID, Title: "Already linked",
			SourceType: core.SourcePubMed, SourceId: "999"},
	)
	require.NoError(t, err)

	enricher, err := NewEnricher(searcher, stores.Entries, nil)
	require.NoError(t, err)

	result, err := enricher.Run(ctx, owner)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Enriched)
	assert.Equal(t, 1, result.Missed)
	assert.Equal(t, 1, result.Failed)

	// The findable entry now carries its PMID
	missing, err := stores.Entries.GetEntriesWithoutSource(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, missing, 2, "only the missed and failed entries remain unlinked")
	for _, entry := range missing {
		assert.NotEqual(t, "Findable paper", entry.Title)
	}
}

func TestEnricherStopsOnCancelledContext(t *testing.T) {
	searcher := &testSearcher{
		byTitle: func(ctx context.Context, title string, max int) ([]Candidate, error) {
			return []Candidate{{PMID: "1", Title: title}}, nil
		},
	}
	_, stores := newTestReconciler(t, searcher)
	ctx := context.Background()
	owner := core.ID(4)
	categoryID := seedCategory(t, stores, owner)

	_, err := stores.Entries.AddEntries(ctx, &core.Entry{
		OwnerId: owner, CategoryId: categoryID, Title: "Any paper", SourceType: core.SourceCVImport})
	require.NoError(t, err)

	enricher, err := NewEnricher(searcher, stores.Entries, nil)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = enricher.Run(cancelled, owner)
	assert.ErrorIs(t, err, context.Canceled)
}
