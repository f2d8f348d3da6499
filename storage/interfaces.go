package storage

import (
	"context"
	"time"

	"github.com/vitaeworks/vitae/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CategoryRepository provides operations for managing categories.
type CategoryRepository interface {
	Repository
	// AddCategories adds one or more categories to storage.
	// For categories with ID=0, generates new IDs from sequence.
	// DisplayOrder is assigned as max(existing for owner)+1 in input order;
	// orders are dense, append-only and never reused.
	// Returns the categories with IDs, orders and timestamps populated.
	AddCategories(ctx context.Context, categories ...*core.Category) ([]*core.Category, error)

	// GetCategory retrieves a single category by ID.
	// Returns ErrNotFound if the category doesn't exist.
	GetCategory(ctx context.Context, id core.ID) (*core.Category, error)

	// GetCategoriesByOwner retrieves all of an owner's categories ordered by
	// display order.
	GetCategoriesByOwner(ctx context.Context, ownerID core.ID) ([]*core.Category, error)

	// FindCategoryByName finds an owner's category by case-insensitive name.
	// Returns ErrNotFound if no matching category exists.
	FindCategoryByName(ctx context.Context, ownerID core.ID, name string) (*core.Category, error)
}

// EntryRepository provides operations for managing entries.
type EntryRepository interface {
	Repository
	// AddEntries adds one or more entries to storage.
	// For entries with ID=0, generates new IDs from sequence.
	// DisplayOrder is assigned as max(existing in category)+1 in input order.
	// A dedup-key index record is written for each entry.
	AddEntries(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error)

	// UpdateEntries updates existing entries.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any entry doesn't exist.
	UpdateEntries(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error)

	// GetEntry retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id core.ID) (*core.Entry, error)

	// GetEntriesByOwner retrieves all entries belonging to an owner.
	GetEntriesByOwner(ctx context.Context, ownerID core.ID) ([]*core.Entry, error)

	// GetEntriesByCategory retrieves a category's entries ordered by
	// display order.
	GetEntriesByCategory(ctx context.Context, categoryID core.ID) ([]*core.Entry, error)

	// GetEntriesWithoutSource retrieves an owner's entries that have no
	// external source identifier attached, for batch enrichment.
	GetEntriesWithoutSource(ctx context.Context, ownerID core.ID) ([]*core.Entry, error)

	// GetDedupHashes returns the dedup-key hashes of all entries persisted
	// for an owner. Loaded once per ingestion run to gate entry creation.
	GetDedupHashes(ctx context.Context, ownerID core.ID) (map[core.ID]struct{}, error)
}

// JobRepository provides operations for managing ingestion jobs.
type JobRepository interface {
	Repository
	// AddJob adds a job to storage, generating its ID from sequence.
	AddJob(ctx context.Context, job *core.Job) (*core.Job, error)

	// UpdateJob updates an existing job.
	// Returns ErrNotFound if the job doesn't exist.
	UpdateJob(ctx context.Context, job *core.Job) (*core.Job, error)

	// GetJob retrieves a single job by ID.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, id core.ID) (*core.Job, error)

	// GetJobsByOwner retrieves all jobs submitted by an owner, newest first.
	GetJobsByOwner(ctx context.Context, ownerID core.ID) ([]*core.Job, error)
}

// CandidateRepository provides operations for managing pending candidates
// staged by the reconciliation loop.
type CandidateRepository interface {
	Repository
	// AddCandidates adds candidates to storage. Candidates carrying an
	// external identifier get a deterministic content-based ID so staging
	// the same external record twice is a no-op overwrite; the rest get
	// sequence IDs.
	AddCandidates(ctx context.Context, candidates ...*core.PendingCandidate) ([]*core.PendingCandidate, error)

	// UpdateCandidates updates existing candidates (approval/discard).
	// Returns ErrNotFound if any candidate doesn't exist.
	UpdateCandidates(ctx context.Context, candidates ...*core.PendingCandidate) ([]*core.PendingCandidate, error)

	// GetCandidatesByOwner retrieves all of an owner's candidates.
	GetCandidatesByOwner(ctx context.Context, ownerID core.ID) ([]*core.PendingCandidate, error)
}

// SubscriptionRepository provides operations for reconciliation subscriptions.
type SubscriptionRepository interface {
	Repository
	// UpsertSubscription creates or replaces an owner's subscription.
	UpsertSubscription(ctx context.Context, sub *core.Subscription) (*core.Subscription, error)

	// GetSubscription retrieves an owner's subscription.
	// Returns ErrNotFound if the owner has none.
	GetSubscription(ctx context.Context, ownerID core.ID) (*core.Subscription, error)

	// GetSubscriptions retrieves all subscriptions.
	GetSubscriptions(ctx context.Context) ([]*core.Subscription, error)

	// TouchLastChecked updates the last-checked timestamp for an owner.
	// Called after every reconciliation pass, even an empty one.
	TouchLastChecked(ctx context.Context, ownerID core.ID, at time.Time) error
}

// ActivityLog is an append-only observability sink. Records are never read
// back by this module.
type ActivityLog interface {
	// Append stores one activity record.
	Append(ctx context.Context, record *core.ActivityRecord) error
}
