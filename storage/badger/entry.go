package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
type EntryRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(backend *Backend) (*EntryRepository, error) {
	idSeq, err := backend.GetSequence(entryIDSeq)
	if err != nil {
		return nil, err
	}

	return &EntryRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *EntryRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *EntryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEntries adds one or more entries to storage.
func (r *EntryRepository) AddEntries(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Track the next display order per category across this batch.
		nextOrder := make(map[core.ID]int)

		for _, entry := range entries {
			if err := core.ValidateEntry(entry); err != nil {
				return err
			}

			if entry.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				entry.Id = core.ID(nextID)
			}

			order, ok := nextOrder[entry.CategoryId]
			if !ok {
				maxOrder, err := maxEntryOrder(tx, entry.CategoryId)
				if err != nil {
					return err
				}
				order = maxOrder + 1
			}
			entry.DisplayOrder = order
			nextOrder[entry.CategoryId] = order + 1

			entry.InsertedAt = time.Now().UTC()
			entry.UpdatedAt = entry.InsertedAt

			if err := writeEntry(tx, entry); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// UpdateEntries updates existing entries.
func (r *EntryRepository) UpdateEntries(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			old, err := readEntry(tx, makeRecordKey(entryRecordPrefix, entry.Id))
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			entry.UpdatedAt = time.Now().UTC()

			// Drop the old dedup index record if the key fields changed
			oldHash := core.DedupKeyHash(old.Title, old.Date, old.Description)
			newHash := core.DedupKeyHash(entry.Title, entry.Date, entry.Description)
			if oldHash != newHash {
				if err := tx.Delete(makePairKey(entryDedupPrefix, old.OwnerId, oldHash)); err != nil {
					return err
				}
			}

			if err := writeEntry(tx, entry); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// GetEntry retrieves a single entry by ID.
func (r *EntryRepository) GetEntry(ctx context.Context, id core.ID) (*core.Entry, error) {
	var result *core.Entry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntry(tx, makeRecordKey(entryRecordPrefix, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetEntriesByOwner retrieves all entries belonging to an owner.
func (r *EntryRepository) GetEntriesByOwner(ctx context.Context, ownerID core.ID) ([]*core.Entry, error) {
	return r.scanEntries(entryOwnerPrefix, ownerID, nil)
}

// GetEntriesByCategory retrieves a category's entries ordered by
// display order.
func (r *EntryRepository) GetEntriesByCategory(ctx context.Context, categoryID core.ID) ([]*core.Entry, error) {
	results, err := r.scanEntries(entryCategoryPrefix, categoryID, nil)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Entry) int {
		return a.DisplayOrder - b.DisplayOrder
	})
	return results, nil
}

// GetEntriesWithoutSource retrieves an owner's entries that carry no
// external source identifier.
func (r *EntryRepository) GetEntriesWithoutSource(ctx context.Context, ownerID core.ID) ([]*core.Entry, error) {
	return r.scanEntries(entryOwnerPrefix, ownerID, func(entry *core.Entry) bool {
		return entry.SourceId == ""
	})
}

// GetDedupHashes returns the dedup-key hashes of an owner's entries.
func (r *EntryRepository) GetDedupHashes(ctx context.Context, ownerID core.ID) (map[core.ID]struct{}, error) {
	hashes := make(map[core.ID]struct{})
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := makePartialPairKey(entryDedupPrefix, ownerID)
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			hashes[idFromPairKey(iter.Item().Key())] = struct{}{}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// Helper methods

// scanEntries reads entries through a composite index, optionally filtered.
func (r *EntryRepository) scanEntries(indexPrefix string, first core.ID, keep func(*core.Entry) bool) ([]*core.Entry, error) {
	var results []*core.Entry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := makePartialPairKey(indexPrefix, first)
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			entryID := idFromPairKey(iter.Item().Key())
			entry, err := readEntry(tx, makeRecordKey(entryRecordPrefix, entryID))
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}
			if keep == nil || keep(entry) {
				results = append(results, entry)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// writeEntry stores the primary record and all index records for an entry.
func writeEntry(tx *badger.Txn, entry *core.Entry) error {
	key := makeRecordKey(entryRecordPrefix, entry.Id)
	if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
		return err
	}

	ownerKey := makePairKey(entryOwnerPrefix, entry.OwnerId, entry.Id)
	if err := tx.Set(ownerKey, storage.MarshalID(entry.Id)); err != nil {
		return err
	}

	categoryKey := makePairKey(entryCategoryPrefix, entry.CategoryId, entry.Id)
	if err := tx.Set(categoryKey, storage.MarshalID(entry.Id)); err != nil {
		return err
	}

	dedupKey := makePairKey(entryDedupPrefix, entry.OwnerId,
		core.DedupKeyHash(entry.Title, entry.Date, entry.Description))
	return tx.Set(dedupKey, storage.MarshalID(entry.Id))
}

// readEntry reads an entry from the transaction.
func readEntry(tx *badger.Txn, key []byte) (*core.Entry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.Entry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalEntry(val)
		return err
	})
	return entry, err
}

// maxEntryOrder returns the highest display order within a category,
// or 0 when the category is empty.
func maxEntryOrder(tx *badger.Txn, categoryID core.ID) (int, error) {
	maxOrder := 0

	opts := badger.DefaultIteratorOptions
	prefix := makePartialPairKey(entryCategoryPrefix, categoryID)
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		entryID := idFromPairKey(iter.Item().Key())
		entry, err := readEntry(tx, makeRecordKey(entryRecordPrefix, entryID))
		if err != nil {
			return 0, err
		}
		if entry != nil && entry.DisplayOrder > maxOrder {
			maxOrder = entry.DisplayOrder
		}
	}
	return maxOrder, nil
}
