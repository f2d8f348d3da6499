package pubmed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage/badger"
)

// testSearcher implements Searcher with function fields.
type testSearcher struct {
	byAuthor func(ctx context.Context, author string, max int) ([]Candidate, error)
	byTitle  func(ctx context.Context, title string, max int) ([]Candidate, error)
}

func (s *testSearcher) SearchByAuthor(ctx context.Context, author string, max int) ([]Candidate, error) {
	if s.byAuthor == nil {
		return nil, nil
	}
	return s.byAuthor(ctx, author, max)
}

func (s *testSearcher) SearchByTitle(ctx context.Context, title string, max int) ([]Candidate, error) {
	if s.byTitle == nil {
		return nil, nil
	}
	return s.byTitle(ctx, title, max)
}

// testNotifier records notifications.
type testNotifier struct {
	calls int
	fail  bool
}

func (n *testNotifier) Notify(ctx context.Context, sub *core.Subscription, candidates []Candidate) error {
	n.calls++
	if n.fail {
		return errors.New("smtp down")
	}
	return nil
}

func newTestReconciler(t *testing.T, searcher Searcher, opts ...ReconcilerOption) (*Reconciler, *badger.Stores) {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	reconciler, err := NewReconciler(searcher,
		stores.Entries, stores.Candidates, stores.Subscriptions, stores.Activity, opts...)
	require.NoError(t, err)
	return reconciler, stores
}

func seedCategory(t *testing.T, stores *badger.Stores, owner core.ID) core.ID {
	t.Helper()
	added, err := stores.Categories.AddCategories(context.Background(),
		&core.Category{OwnerId: owner, Name: "Publications"})
	require.NoError(t, err)
	return added[0].Id
}

func TestSearchFiltersKnownRecords(t *testing.T) {
	searcher := &testSearcher{
		byAuthor: func(ctx context.Context, author string, max int) ([]Candidate, error) {
			return []Candidate{
				{PMID: "100", Title: "Known by identifier"},
				{PMID: "200", Title: "A Survey of Retrieval!"},
				{PMID: "300", Title: "Genuinely new work"},
				{PMID: "400", Title: "Already staged"},
			}, nil
		},
	}
	reconciler, stores := newTestReconciler(t, searcher)
	ctx := context.Background()
	owner := core.ID(1)
	categoryID := seedCategory(t, stores, owner)

	// Entry confirmed with identifier 100, and one whose loose title
	// matches candidate 200.
	_, err := stores.Entries.AddEntries(ctx,
		&core.Entry{OwnerId: owner, CategoryId: categoryID, Title: "Known by identifier",
			SourceType: core.SourcePubMed, SourceId: "100"},
		&core.Entry{OwnerId: owner, CategoryId: categoryID, Title: "a survey of retrieval",
			SourceType: core.SourceCVImport},
	)
	require.NoError(t, err)

	// Candidate 400 already staged
	_, err = stores.Candidates.AddCandidates(ctx, &core.PendingCandidate{
		OwnerId: owner, Title: "Already staged", ExternalId: "400",
		SourceType: core.SourcePubMed, Status: core.CandidatePending,
	})
	require.NoError(t, err)

	result, err := reconciler.Search(ctx, owner, "Doe J")
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	require.Len(t, result.New, 1)
	assert.Equal(t, "300", result.New[0].PMID)
}

func TestSyncOwnerStagesByIdentifierOnly(t *testing.T) {
	searcher := &testSearcher{
		byAuthor: func(ctx context.Context, author string, max int) ([]Candidate, error) {
			return []Candidate{
				{PMID: "100", Title: "Known by identifier", Journal: "Nature", Date: "2026 Jan"},
				// Same loose title as a stored entry, but scheduled syncs
				// keep it: generic titles must not suppress real papers
				{PMID: "500", Title: "a survey of retrieval", Date: "2025"},
			}, nil
		},
	}
	notifier := &testNotifier{}
	reconciler, stores := newTestReconciler(t, searcher, WithNotifier(notifier))
	ctx := context.Background()
	owner := core.ID(1)
	categoryID := seedCategory(t, stores, owner)

	_, err := stores.Entries.AddEntries(ctx,
		&core.Entry{OwnerId: owner, CategoryId: categoryID, Title: "Known by identifier",
			SourceType: core.SourcePubMed, SourceId: "100"},
		&core.Entry{OwnerId: owner, CategoryId: categoryID, Title: "A Survey of Retrieval",
			SourceType: core.SourceCVImport},
	)
	require.NoError(t, err)

	sub := &core.Subscription{
		OwnerId:     owner,
		AuthorQuery: "Doe J[Author]",
		Frequency:   core.FrequencyWeekly,
		Notify:      true,
	}
	_, err = stores.Subscriptions.UpsertSubscription(ctx, sub)
	require.NoError(t, err)

	staged, err := reconciler.SyncOwner(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, 1, staged)
	assert.Equal(t, 1, notifier.calls)

	candidates, err := stores.Candidates.GetCandidatesByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "500", candidates[0].ExternalId)
	assert.Equal(t, core.CandidatePending, candidates[0].Status)
	assert.Equal(t, scheduledConfidence, candidates[0].Confidence)

	// Cursor advanced
	stored, err := stores.Subscriptions.GetSubscription(ctx, owner)
	require.NoError(t, err)
	assert.False(t, stored.LastCheckedAt.IsZero())
}

func TestSyncOwnerAdvancesCursorOnEmptyResult(t *testing.T) {
	searcher := &testSearcher{
		byAuthor: func(ctx context.Context, author string, max int) ([]Candidate, error) {
			return nil, nil
		},
	}
	reconciler, stores := newTestReconciler(t, searcher)
	ctx := context.Background()

	sub := &core.Subscription{OwnerId: 2, AuthorQuery: "Roe R[Author]", Frequency: core.FrequencyDaily}
	_, err := stores.Subscriptions.UpsertSubscription(ctx, sub)
	require.NoError(t, err)

	staged, err := reconciler.SyncOwner(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, 0, staged)

	stored, err := stores.Subscriptions.GetSubscription(ctx, 2)
	require.NoError(t, err)
	assert.False(t, stored.LastCheckedAt.IsZero(), "cursor must advance even with nothing new")
}

func TestSyncOwnerSwallowsNotifierFailure(t *testing.T) {
	searcher := &testSearcher{
		byAuthor: func(ctx context.Context, author string, max int) ([]Candidate, error) {
			return []Candidate{{PMID: "900", Title: "Fresh"}}, nil
		},
	}
	notifier := &testNotifier{fail: true}
	reconciler, stores := newTestReconciler(t, searcher, WithNotifier(notifier))
	ctx := context.Background()

	sub := &core.Subscription{OwnerId: 3, AuthorQuery: "Poe E[Author]",
		Frequency: core.FrequencyWeekly, Notify: true}
	_, err := stores.Subscriptions.UpsertSubscription(ctx, sub)
	require.NoError(t, err)

	staged, err := reconciler.SyncOwner(ctx, sub)
	require.NoError(t, err, "notification failure must not fail the sync")
	assert.Equal(t, 1, staged)
	assert.Equal(t, 1, notifier.calls)
}

func TestRunDueHonorsFrequencyWindows(t *testing.T) {
	var searched []string
	searcher := &testSearcher{
		byAuthor: func(ctx context.Context, author string, max int) ([]Candidate, error) {
			searched = append(searched, author)
			return nil, nil
		},
	}

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	reconciler, stores := newTestReconciler(t, searcher, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	// Due: never checked
	_, err := stores.Subscriptions.UpsertSubscription(ctx, &core.Subscription{
		OwnerId: 1, AuthorQuery: "Due Never[Author]", Frequency: core.FrequencyWeekly})
	require.NoError(t, err)

	// Not due: daily, checked an hour ago
	_, err = stores.Subscriptions.UpsertSubscription(ctx, &core.Subscription{
		OwnerId: 2, AuthorQuery: "Fresh Check[Author]", Frequency: core.FrequencyDaily})
	require.NoError(t, err)
	require.NoError(t, stores.Subscriptions.TouchLastChecked(ctx, 2, now.Add(-time.Hour)))

	// Due: weekly, checked eight days ago
	_, err = stores.Subscriptions.UpsertSubscription(ctx, &core.Subscription{
		OwnerId: 3, AuthorQuery: "Stale Check[Author]", Frequency: core.FrequencyWeekly})
	require.NoError(t, err)
	require.NoError(t, stores.Subscriptions.TouchLastChecked(ctx, 3, now.Add(-8*24*time.Hour)))

	require.NoError(t, reconciler.RunDue(ctx))

	assert.ElementsMatch(t, []string{"Due Never[Author]", "Stale Check[Author]"}, searched)
}

func TestRunDueContinuesPastOwnerFailure(t *testing.T) {
	searcher := &testSearcher{
		byAuthor: func(ctx context.Context, author string, max int) ([]Candidate, error) {
			if author == "Broken Query[Author]" {
				return nil, errors.New("service unavailable")
			}
			return []Candidate{{PMID: "42", Title: "Works"}}, nil
		},
	}
	reconciler, stores := newTestReconciler(t, searcher)
	ctx := context.Background()

	_, err := stores.Subscriptions.UpsertSubscription(ctx, &core.Subscription{
		OwnerId: 1, AuthorQuery: "Broken Query[Author]", Frequency: core.FrequencyWeekly})
	require.NoError(t, err)
	_, err = stores.Subscriptions.UpsertSubscription(ctx, &core.Subscription{
		OwnerId: 2, AuthorQuery: "Fine Query[Author]", Frequency: core.FrequencyWeekly})
	require.NoError(t, err)

	require.NoError(t, reconciler.RunDue(ctx))

	candidates, err := stores.Candidates.GetCandidatesByOwner(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}
