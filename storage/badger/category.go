package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage"
)

// CategoryRepository implements storage.CategoryRepository for BadgerDB.
type CategoryRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(backend *Backend) (*CategoryRepository, error) {
	idSeq, err := backend.GetSequence(categoryIDSeq)
	if err != nil {
		return nil, err
	}

	return &CategoryRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *CategoryRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *CategoryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddCategories adds one or more categories to storage.
// Display orders continue from the owner's current maximum and are never
// reused, so ordering survives later deletions.
func (r *CategoryRepository) AddCategories(ctx context.Context, categories ...*core.Category) ([]*core.Category, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Track the next display order per owner across this batch.
		nextOrder := make(map[core.ID]int)

		for _, category := range categories {
			if err := core.ValidateCategory(category); err != nil {
				return err
			}

			if category.Id == 0 {
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
				category.Id = core.ID(nextID)
			}

			order, ok := nextOrder[category.OwnerId]
			if !ok {
				maxOrder, err := maxCategoryOrder(tx, category.OwnerId)
				if err != nil {
					return err
				}
				order = maxOrder + 1
			}
			category.DisplayOrder = order
			nextOrder[category.OwnerId] = order + 1

			category.InsertedAt = time.Now().UTC()
			category.UpdatedAt = category.InsertedAt

			key := makeRecordKey(categoryRecordPrefix, category.Id)
			if err := tx.Set(key, storage.MarshalCategory(category)); err != nil {
				return err
			}

			ownerKey := makePairKey(categoryOwnerPrefix, category.OwnerId, category.Id)
			if err := tx.Set(ownerKey, storage.MarshalID(category.Id)); err != nil {
				return err
			}

			nameKey := makeCategoryNameKey(category.OwnerId, category.Name)
			if err := tx.Set(nameKey, storage.MarshalID(category.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return categories, err
}

// GetCategory retrieves a single category by ID.
func (r *CategoryRepository) GetCategory(ctx context.Context, id core.ID) (*core.Category, error) {
	var result *core.Category
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readCategory(tx, makeRecordKey(categoryRecordPrefix, id))
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

// GetCategoriesByOwner retrieves an owner's categories ordered by
// display order.
func (r *CategoryRepository) GetCategoriesByOwner(ctx context.Context, ownerID core.ID) ([]*core.Category, error) {
	var results []*core.Category
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = readOwnerCategories(tx, ownerID)
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Category) int {
		return a.DisplayOrder - b.DisplayOrder
	})
	return results, nil
}

// FindCategoryByName finds an owner's category by case-insensitive name.
func (r *CategoryRepository) FindCategoryByName(ctx context.Context, ownerID core.ID, name string) (*core.Category, error) {
	var result *core.Category
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCategoryNameKey(ownerID, name))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var categoryID core.ID
		err = item.Value(func(val []byte) error {
			categoryID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readCategory(tx, makeRecordKey(categoryRecordPrefix, categoryID))
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

// Helper methods

// readCategory reads a category from the transaction.
func readCategory(tx *badger.Txn, key []byte) (*core.Category, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var category *core.Category
	err = item.Value(func(val []byte) error {
		var err error
		category, err = storage.UnmarshalCategory(val)
		return err
	})
	return category, err
}

// readOwnerCategories reads all of an owner's categories via the owner index.
func readOwnerCategories(tx *badger.Txn, ownerID core.ID) ([]*core.Category, error) {
	var results []*core.Category

	opts := badger.DefaultIteratorOptions
	prefix := makePartialPairKey(categoryOwnerPrefix, ownerID)
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		categoryID := idFromPairKey(iter.Item().Key())
		category, err := readCategory(tx, makeRecordKey(categoryRecordPrefix, categoryID))
		if err != nil {
			return nil, err
		}
		if category != nil {
			results = append(results, category)
		}
	}
	return results, nil
}

// maxCategoryOrder returns the highest display order among an owner's
// categories, or 0 when the owner has none.
func maxCategoryOrder(tx *badger.Txn, ownerID core.ID) (int, error) {
	categories, err := readOwnerCategories(tx, ownerID)
	if err != nil {
		return 0, err
	}
	maxOrder := 0
	for _, category := range categories {
		if category.DisplayOrder > maxOrder {
			maxOrder = category.DisplayOrder
		}
	}
	return maxOrder, nil
}
