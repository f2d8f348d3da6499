package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage"
)

// SubscriptionRepository implements storage.SubscriptionRepository for
// BadgerDB. Subscriptions are keyed by owner, one per owner.
type SubscriptionRepository struct {
	backend *Backend
}

var _ storage.SubscriptionRepository = (*SubscriptionRepository)(nil)

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(backend *Backend) (*SubscriptionRepository, error) {
	return &SubscriptionRepository{
		backend: backend,
	}, nil
}

// Close releases resources. SubscriptionRepository has none.
func (r *SubscriptionRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SubscriptionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertSubscription creates or replaces an owner's subscription.
func (r *SubscriptionRepository) UpsertSubscription(ctx context.Context, sub *core.Subscription) (*core.Subscription, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSubscriptionKey(sub.OwnerId)

		old, err := readSubscription(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if old != nil {
			// Preserve the reconciliation cursor across edits
			sub.LastCheckedAt = old.LastCheckedAt
			sub.InsertedAt = old.InsertedAt
		} else {
			sub.InsertedAt = now
		}
		sub.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalSubscription(sub)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return sub, err
}

// GetSubscription retrieves an owner's subscription.
func (r *SubscriptionRepository) GetSubscription(ctx context.Context, ownerID core.ID) (*core.Subscription, error) {
	var result *core.Subscription
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSubscription(tx, makeSubscriptionKey(ownerID))
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

// GetSubscriptions retrieves all subscriptions.
func (r *SubscriptionRepository) GetSubscriptions(ctx context.Context) ([]*core.Subscription, error) {
	var results []*core.Subscription
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(subscriptionRecordPrefix + ":")
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()

			var sub *core.Subscription
			err := item.Value(func(val []byte) error {
				var err error
				sub, err = storage.UnmarshalSubscription(val)
				return err
			})
			if err != nil {
				return err
			}
			if sub != nil {
				results = append(results, sub)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// TouchLastChecked updates the last-checked timestamp for an owner.
func (r *SubscriptionRepository) TouchLastChecked(ctx context.Context, ownerID core.ID, at time.Time) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSubscriptionKey(ownerID)

		sub, err := readSubscription(tx, key)
		if err != nil {
			return err
		}
		if sub == nil {
			return storage.ErrNotFound
		}

		sub.LastCheckedAt = at.UTC()
		sub.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalSubscription(sub)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readSubscription reads a subscription from the transaction.
func readSubscription(tx *badger.Txn, key []byte) (*core.Subscription, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var sub *core.Subscription
	err = item.Value(func(val []byte) error {
		var err error
		sub, err = storage.UnmarshalSubscription(val)
		return err
	})
	return sub, err
}
