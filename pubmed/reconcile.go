package pubmed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage"
)

const (
	// Candidates fetched per reconciliation pass.
	searchMax = 200

	// Confidence annotation for candidates staged by the scheduled loop.
	scheduledConfidence = "author-match"
)

// Searcher is the search capability the reconciler depends on.
// *Client satisfies it; tests substitute their own.
type Searcher interface {
	SearchByAuthor(ctx context.Context, author string, max int) ([]Candidate, error)
	SearchByTitle(ctx context.Context, title string, max int) ([]Candidate, error)
}

// Notifier delivers "new candidates found" messages to owners.
type Notifier interface {
	Notify(ctx context.Context, sub *core.Subscription, candidates []Candidate) error
}

// LogNotifier is the default Notifier; it just logs.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Notify(ctx context.Context, sub *core.Subscription, candidates []Candidate) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("new publication candidates",
		"owner", sub.OwnerId,
		"contact", sub.Contact,
		"count", len(candidates))
	return nil
}

// Reconciler matches PubMed search results against an owner's stored record
// and stages the genuinely new ones as pending candidates.
type Reconciler struct {
	searcher      Searcher
	entries       storage.EntryRepository
	candidates    storage.CandidateRepository
	subscriptions storage.SubscriptionRepository
	activity      storage.ActivityLog
	notifier      Notifier
	logger        *slog.Logger
	now           func() time.Time
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithNotifier sets the notifier used for subscriptions with Notify set.
func WithNotifier(n Notifier) ReconcilerOption {
	return func(r *Reconciler) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// NewReconciler creates a Reconciler.
func NewReconciler(
	searcher Searcher,
	entries storage.EntryRepository,
	candidates storage.CandidateRepository,
	subscriptions storage.SubscriptionRepository,
	activity storage.ActivityLog,
	opts ...ReconcilerOption,
) (*Reconciler, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if entries == nil {
		return nil, ErrEntryRepositoryRequired
	}
	if candidates == nil {
		return nil, ErrCandidateRepositoryRequired
	}
	if subscriptions == nil {
		return nil, ErrSubscriptionRepositoryRequired
	}

	r := &Reconciler{
		searcher:      searcher,
		entries:       entries,
		candidates:    candidates,
		subscriptions: subscriptions,
		activity:      activity,
		notifier:      &LogNotifier{},
		logger:        slog.Default().With("component", "pubmed"),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// SearchResult is what an interactive search reports back.
type SearchResult struct {
	Total int
	New   []Candidate
}

// Search fetches candidates for an author and filters out records the owner
// already has, matching by external identifier against both confirmed
// entries and staged candidates, and by loose title against confirmed
// entries. It stages nothing.
func (r *Reconciler) Search(ctx context.Context, ownerID core.ID, author string) (*SearchResult, error) {
	found, err := r.searcher.SearchByAuthor(ctx, author, searchMax)
	if err != nil {
		return nil, err
	}

	known, err := r.knownIdentifiers(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	titles, err := r.knownTitles(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{Total: len(found)}
	for _, candidate := range found {
		if _, ok := known[candidate.PMID]; ok {
			continue
		}
		if _, ok := titles[core.LooseTitleKey(candidate.Title)]; ok {
			continue
		}
		result.New = append(result.New, candidate)
	}
	return result, nil
}

// RunDue reconciles every subscription whose frequency window has elapsed.
// Per-owner failures are logged and counted, never fatal to the pass.
func (r *Reconciler) RunDue(ctx context.Context) error {
	subs, err := r.subscriptions.GetSubscriptions(ctx)
	if err != nil {
		return err
	}

	failures := 0
	for _, sub := range subs {
		if !sub.Due(r.now()) {
			continue
		}
		if _, err := r.SyncOwner(ctx, sub); err != nil {
			r.logger.Error("scheduled reconciliation failed", "owner", sub.OwnerId, "err", err)
			failures++
		}
	}
	if failures > 0 {
		r.logger.Warn("reconciliation pass finished with failures", "failures", failures)
	}
	return nil
}

// SyncOwner runs one scheduled reconciliation for a subscription. Filtering
// is by identifier only: title matching would suppress legitimately distinct
// publications with generic titles. The last-checked timestamp is advanced
// even when nothing new was found, so the subscription doesn't re-trigger
// before its next window.
func (r *Reconciler) SyncOwner(ctx context.Context, sub *core.Subscription) (staged int, err error) {
	defer func() {
		if touchErr := r.subscriptions.TouchLastChecked(ctx, sub.OwnerId, r.now()); touchErr != nil {
			r.logger.Error("last-checked update failed", "owner", sub.OwnerId, "err", touchErr)
			if err == nil {
				err = touchErr
			}
		}
	}()

	found, err := r.searcher.SearchByAuthor(ctx, sub.AuthorQuery, searchMax)
	if err != nil {
		return 0, err
	}

	known, err := r.knownIdentifiers(ctx, sub.OwnerId)
	if err != nil {
		return 0, err
	}

	var fresh []Candidate
	for _, candidate := range found {
		if candidate.PMID == "" {
			continue
		}
		if _, ok := known[candidate.PMID]; ok {
			continue
		}
		fresh = append(fresh, candidate)
	}

	if len(fresh) > 0 {
		staging := make([]*core.PendingCandidate, len(fresh))
		for i, candidate := range fresh {
			staging[i] = &core.PendingCandidate{
				OwnerId:     sub.OwnerId,
				Title:       candidate.Title,
				Description: describeCandidate(candidate),
				Date:        candidate.Date,
				URL:         candidate.URL(),
				SourceType:  core.SourcePubMed,
				ExternalId:  candidate.PMID,
				Confidence:  scheduledConfidence,
				Status:      core.CandidatePending,
			}
		}
		if _, err := r.candidates.AddCandidates(ctx, staging...); err != nil {
			return 0, err
		}
		staged = len(staging)
	}

	r.logActivity(ctx, sub.OwnerId, len(found), staged)

	if sub.Notify && staged > 0 {
		// Notification failure never fails the sync
		if notifyErr := r.notifier.Notify(ctx, sub, fresh); notifyErr != nil {
			r.logger.Warn("notification failed", "owner", sub.OwnerId, "err", notifyErr)
		}
	}

	r.logger.Info("owner reconciled", "owner", sub.OwnerId, "found", len(found), "staged", staged)
	return staged, nil
}

// knownIdentifiers collects every external identifier already attached to
// the owner's entries or staged candidates, in any status.
func (r *Reconciler) knownIdentifiers(ctx context.Context, ownerID core.ID) (map[string]struct{}, error) {
	known := make(map[string]struct{})

	entries, err := r.entries.GetEntriesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.SourceId != "" {
			known[entry.SourceId] = struct{}{}
		}
	}

	candidates, err := r.candidates.GetCandidatesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, candidate := range candidates {
		if candidate.ExternalId != "" {
			known[candidate.ExternalId] = struct{}{}
		}
	}
	return known, nil
}

// knownTitles collects loose title keys of the owner's entries.
func (r *Reconciler) knownTitles(ctx context.Context, ownerID core.ID) (map[string]struct{}, error) {
	titles := make(map[string]struct{})
	entries, err := r.entries.GetEntriesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		titles[core.LooseTitleKey(entry.Title)] = struct{}{}
	}
	return titles, nil
}

// logActivity appends one summary record per sync; failures only log.
func (r *Reconciler) logActivity(ctx context.Context, ownerID core.ID, found, staged int) {
	if r.activity == nil {
		return
	}
	err := r.activity.Append(ctx, &core.ActivityRecord{
		OwnerId:     ownerID,
		Type:        "pubmed-sync",
		Title:       "PubMed reconciliation",
		Description: describeSync(found, staged),
	})
	if err != nil {
		r.logger.Warn("activity record failed", "owner", ownerID, "err", err)
	}
}

func describeSync(found, staged int) string {
	if staged == 0 {
		return "no new publications found"
	}
	return fmt.Sprintf("staged %d of %d search results", staged, found)
}

func describeCandidate(candidate Candidate) string {
	text := candidate.Journal
	if text == "" {
		return candidate.Date
	}
	if candidate.Date != "" {
		text += ", " + candidate.Date
	}
	return text
}
