package badger

import (
	"errors"

	"github.com/vitaeworks/vitae/storage"
)

// Stores bundles every repository backed by a single BadgerDB instance.
type Stores struct {
	Categories    storage.CategoryRepository
	Entries       storage.EntryRepository
	Jobs          storage.JobRepository
	Candidates    storage.CandidateRepository
	Subscriptions storage.SubscriptionRepository
	Activity      storage.ActivityLog

	backend *Backend
}

// OpenStores opens a BadgerDB database and constructs all repositories
// on top of it. With inMemory set, filePath is ignored.
func OpenStores(filePath string, inMemory bool) (*Stores, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	categories, err := NewCategoryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	entries, err := NewEntryRepository(backend)
	if err != nil {
		categories.Close()
		backend.Close()
		return nil, err
	}
	jobs, err := NewJobRepository(backend)
	if err != nil {
		entries.Close()
		categories.Close()
		backend.Close()
		return nil, err
	}
	candidates, err := NewCandidateRepository(backend)
	if err != nil {
		jobs.Close()
		entries.Close()
		categories.Close()
		backend.Close()
		return nil, err
	}
	subscriptions, err := NewSubscriptionRepository(backend)
	if err != nil {
		candidates.Close()
		jobs.Close()
		entries.Close()
		categories.Close()
		backend.Close()
		return nil, err
	}
	activity, err := NewActivityRepository(backend)
	if err != nil {
		subscriptions.Close()
		candidates.Close()
		jobs.Close()
		entries.Close()
		categories.Close()
		backend.Close()
		return nil, err
	}

	return &Stores{
		Categories:    categories,
		Entries:       entries,
		Jobs:          jobs,
		Candidates:    candidates,
		Subscriptions: subscriptions,
		Activity:      activity,
		backend:       backend,
	}, nil
}

// Backend exposes the underlying backend, mainly for tests.
func (s *Stores) Backend() *Backend {
	return s.backend
}

// Close releases every repository and the underlying database.
func (s *Stores) Close() error {
	errs := []error{
		s.Categories.Close(),
		s.Entries.Close(),
		s.Jobs.Close(),
		s.Candidates.Close(),
		s.Subscriptions.Close(),
	}
	if closer, ok := s.Activity.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, s.backend.Close())
	return errors.Join(errs...)
}
